package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/internal/model"
)

type sizeRepository struct {
	crud[model.Size]
}

// NewSizeRepository creates a new size repository
func NewSizeRepository(db *gorm.DB) SizeRepository {
	return &sizeRepository{crud[model.Size]{db: db}}
}

func (r *sizeRepository) Create(ctx context.Context, size *model.Size) error {
	return r.create(ctx, size)
}

func (r *sizeRepository) Save(ctx context.Context, size *model.Size) error {
	return r.save(ctx, size)
}

func (r *sizeRepository) FindAll(ctx context.Context) ([]model.Size, error) {
	return r.findAll(ctx, "created_at ASC")
}

func (r *sizeRepository) FindByID(ctx context.Context, id string) (*model.Size, error) {
	return r.findByID(ctx, id)
}

// NameExists compares names case-insensitively
func (r *sizeRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, func(db *gorm.DB) *gorm.DB {
		db = db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
		if excludeID != "" {
			db = db.Where("id <> ?", excludeID)
		}
		return db
	})
}

func (r *sizeRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}
