package augmentations

import (
	"github.com/google/uuid"

	"github.com/user/augmentations-api/links"
)

// CreateAugmentationRequest is the payload for creating an
// augmentation.
type CreateAugmentationRequest struct {
	Name        string `json:"name" validate:"required,max=100" example:"Glass-Shield Cloaking"`
	Type        string `json:"type" validate:"required,max=50" example:"Dermal"`
	Area        string `json:"area" validate:"required,max=50" example:"Skin"`
	Activation  string `json:"activation" validate:"required,oneof=Manual Automatic Passive" example:"Manual"`
	EnergyRate  string `json:"energy_rate" validate:"required,max=50" example:"High"`
	Description string `json:"description" validate:"max=2000" example:"Renders the agent invisible to visual detection."`
}

// UpdateAugmentationRequest is the payload for a partial update. Nil
// fields are left unchanged.
type UpdateAugmentationRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=50"`
	Area        *string `json:"area,omitempty" validate:"omitempty,max=50"`
	Activation  *string `json:"activation,omitempty" validate:"omitempty,oneof=Manual Automatic Passive"`
	EnergyRate  *string `json:"energy_rate,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// AugmentationResponse is a single augmentation with its operation
// links.
type AugmentationResponse struct {
	Augmentation
	Links []links.Link `json:"links,omitempty"`
}

// ListResponse is a page of augmentations with pagination links.
type ListResponse struct {
	Items    []Augmentation `json:"items"`
	Page     int            `json:"page" example:"1"`
	PageSize int            `json:"page_size" example:"20"`
	Total    int            `json:"total" example:"42"`
	Links    []links.Link   `json:"links,omitempty"`
}

// RowError describes one rejected row of a CSV import.
type RowError struct {
	Row     int    `json:"row" example:"3"`
	Message string `json:"message" example:"activation must be one of: Manual Automatic Passive"`
}

// ImportResult summarizes a CSV import. BatchID identifies the upload
// in logs; Imported is the number of rows persisted.
type ImportResult struct {
	BatchID  uuid.UUID  `json:"batch_id"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}
