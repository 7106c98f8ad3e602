package augmentations

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/user/augmentations-api/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the handler-facing surface of the augmentations module.
type Service interface {
	List(ctx context.Context, page, pageSize int) ([]Augmentation, int, error)
	Get(ctx context.Context, id int) (*Augmentation, error)
	Create(ctx context.Context, req *CreateAugmentationRequest) (*Augmentation, error)
	Update(ctx context.Context, id int, req *UpdateAugmentationRequest) (*Augmentation, error)
	Delete(ctx context.Context, id int) error
	ImportCSV(ctx context.Context, file io.Reader) (*ImportResult, error)
	All(ctx context.Context) ([]Augmentation, error)
}

// CatalogueService implements Service on a Repository.
type CatalogueService struct {
	repo Repository
}

// NewCatalogueService creates a CatalogueService.
func NewCatalogueService(repo Repository) *CatalogueService {
	return &CatalogueService{repo: repo}
}

// List returns one page of the catalogue. Page numbers start at 1;
// out-of-range inputs are clamped to the defaults.
func (s *CatalogueService) List(ctx context.Context, page, pageSize int) ([]Augmentation, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return s.repo.List(ctx, pageSize, (page-1)*pageSize)
}

// Get fetches one augmentation.
func (s *CatalogueService) Get(ctx context.Context, id int) (*Augmentation, error) {
	return s.repo.Get(ctx, id)
}

// Create adds an augmentation to the catalogue.
func (s *CatalogueService) Create(ctx context.Context, req *CreateAugmentationRequest) (*Augmentation, error) {
	aug := &Augmentation{
		Name:        req.Name,
		Type:        req.Type,
		Area:        req.Area,
		Activation:  req.Activation,
		EnergyRate:  req.EnergyRate,
		Description: req.Description,
	}
	return s.repo.Create(ctx, aug)
}

// Update applies a partial update.
func (s *CatalogueService) Update(ctx context.Context, id int, req *UpdateAugmentationRequest) (*Augmentation, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes an augmentation.
func (s *CatalogueService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// ImportCSV parses the catalogue file and inserts every valid row in
// one transaction. Rows failing validation are reported back without
// blocking the valid ones; a file with no valid rows is rejected.
func (s *CatalogueService) ImportCSV(ctx context.Context, file io.Reader) (*ImportResult, error) {
	augs, rowErrs, err := ParseCatalogueCSV(file)
	if err != nil {
		return nil, err
	}
	if len(augs) == 0 {
		return nil, apperror.NewBadRequestError("CSV file contains no valid augmentation rows", nil)
	}

	if err := s.repo.BulkInsert(ctx, augs); err != nil {
		return nil, err
	}

	return &ImportResult{
		BatchID:  uuid.New(),
		Imported: len(augs),
		Errors:   rowErrs,
	}, nil
}

// All returns the whole catalogue, used by the PDF export.
func (s *CatalogueService) All(ctx context.Context) ([]Augmentation, error) {
	items, _, err := s.repo.List(ctx, maxPageSize*100, 0)
	return items, err
}
