package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/internal/model"
)

type categoryRepository struct {
	crud[model.Category]
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{crud[model.Category]{db: db}}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.create(ctx, category)
}

func (r *categoryRepository) Save(ctx context.Context, category *model.Category) error {
	return r.save(ctx, category)
}

// FindAll returns every category with its subcategories
func (r *categoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	return r.findAll(ctx, "created_at ASC", withPreloads("Subcategories"))
}

func (r *categoryRepository) List(ctx context.Context, query ListQuery) ([]model.Category, int64, error) {
	return r.page(ctx, query.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(query.Search, "name", "slug"), query.dateScope("categories"))
	}, "Subcategories")
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, withPreloads("Subcategories"), func(db *gorm.DB) *gorm.DB {
		return db.Where("slug = ?", slug)
	})
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findByID(ctx, id, "Subcategories")
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, slugScope(slug, excludeID))
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

type subcategoryRepository struct {
	crud[model.Subcategory]
}

// NewSubcategoryRepository creates a new subcategory repository
func NewSubcategoryRepository(db *gorm.DB) SubcategoryRepository {
	return &subcategoryRepository{crud[model.Subcategory]{db: db}}
}

func (r *subcategoryRepository) Create(ctx context.Context, subcategory *model.Subcategory) error {
	return r.create(ctx, subcategory)
}

func (r *subcategoryRepository) Save(ctx context.Context, subcategory *model.Subcategory) error {
	return r.save(ctx, subcategory)
}

func (r *subcategoryRepository) FindAll(ctx context.Context) ([]model.Subcategory, error) {
	return r.findAll(ctx, "created_at ASC", withPreloads("Category"))
}

func (r *subcategoryRepository) List(ctx context.Context, filter SubcategoryFilter) ([]model.Subcategory, int64, error) {
	return r.page(ctx, filter.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(searchScope(filter.Search, "subcategories.name", "subcategories.slug"), filter.dateScope("subcategories"))
		if filter.CategorySlug != "" {
			db = db.Where("subcategories.category_id IN (?)",
				r.db.Model(&model.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
		}
		return db
	}, "Category")
}

func (r *subcategoryRepository) FindByID(ctx context.Context, id string) (*model.Subcategory, error) {
	return r.findByID(ctx, id, "Category")
}

func (r *subcategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, slugScope(slug, excludeID))
}

func (r *subcategoryRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}
