package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/prometheus"
)

const (
	msgSizeNotFound = "Size not found"
	msgSizeExists   = "Size already exists!"
)

// SizeInput creates or renames a size label
type SizeInput struct {
	Name string `json:"name" validate:"required,max=20"`
}

// SizeService manages the catalog-wide size labels
type SizeService struct {
	sizes repository.SizeRepository
}

// NewSizeService creates a new size service
func NewSizeService(sizes repository.SizeRepository) *SizeService {
	return &SizeService{sizes: sizes}
}

// All returns every size
func (s *SizeService) All(ctx context.Context) ([]model.Size, error) {
	items, err := s.sizes.FindAll(ctx)
	if err != nil {
		return nil, failure(ctx, "Failed to list sizes", err)
	}
	return items, nil
}

// Get returns a size by id
func (s *SizeService) Get(ctx context.Context, id string) (*model.Size, error) {
	size, err := s.sizes.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgSizeNotFound, "Failed to get size", zap.String("size_id", id))
	}
	return size, nil
}

func (s *SizeService) ensureFree(ctx context.Context, name, excludeID string) error {
	taken, err := s.sizes.NameExists(ctx, name, excludeID)
	if err != nil {
		return failure(ctx, "Failed to check size name", err)
	}
	if taken {
		return apperror.Conflict(msgSizeExists)
	}
	return nil
}

// Create adds a size with a unique name
func (s *SizeService) Create(ctx context.Context, in SizeInput) (*model.Size, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.ensureFree(ctx, name, ""); err != nil {
		return nil, err
	}
	size := &model.Size{Name: name}
	if err := s.sizes.Create(ctx, size); err != nil {
		return nil, write(ctx, err, msgSizeExists, msgSizeNotFound, "Failed to create size")
	}
	prometheus.RecordCatalogOperation("size", "create")
	return size, nil
}

// Update renames a size; the new name must not belong to another size
func (s *SizeService) Update(ctx context.Context, id string, in SizeInput) (*model.Size, error) {
	size, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.ensureFree(ctx, name, size.ID); err != nil {
		return nil, err
	}
	size.Name = name
	if err := s.sizes.Save(ctx, size); err != nil {
		return nil, write(ctx, err, msgSizeExists, msgSizeNotFound, "Failed to update size")
	}
	prometheus.RecordCatalogOperation("size", "update")
	return size, nil
}

// Delete removes a size
func (s *SizeService) Delete(ctx context.Context, id string) error {
	if err := s.sizes.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgSizeNotFound, "Failed to delete size", zap.String("size_id", id))
	}
	prometheus.RecordCatalogOperation("size", "delete")
	return nil
}
