// Package augmentations implements the augmentation catalogue: CRUD
// over the game's augmentation data, CSV bulk import and PDF export.
package augmentations

import "time"

// Augmentation represents one augmentation as stored in the
// augmentations table. Name is unique across the catalogue.
type Augmentation struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Area        string    `json:"area"`
	Activation  string    `json:"activation"`
	EnergyRate  string    `json:"energy_rate"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
