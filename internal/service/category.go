package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/prometheus"
)

const (
	msgCategoryNotFound    = "Category not found."
	msgCategorySlugTaken   = "Category with this slug already exists."
	msgSubcategoryNotFound = "Subcategory not found."
	msgSubcategorySlugUsed = "Subcategory with this slug already exists."
)

// CategoryInput creates a category
type CategoryInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=50"`
	Slug     string  `json:"slug" validate:"required,slug"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateCategoryInput is a partial category update
type UpdateCategoryInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=50"`
	Slug     *string `json:"slug" validate:"omitempty,slug"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// CategoryService manages the top level of the catalog
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// All returns every category with its subcategories
func (s *CategoryService) All(ctx context.Context) ([]model.Category, error) {
	items, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, failure(ctx, "Failed to list categories", err)
	}
	return items, nil
}

// List returns one page of categories
func (s *CategoryService) List(ctx context.Context, q repository.ListQuery) (*Page[model.Category], error) {
	items, total, err := s.categories.List(ctx, q)
	if err != nil {
		return nil, failure(ctx, "Failed to list categories", err)
	}
	return newPage(items, total, q.Pagination), nil
}

// GetBySlug returns a category with its subcategories
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, lookup(ctx, err, msgCategoryNotFound, "Failed to get category", zap.String("slug", slug))
	}
	return c, nil
}

// Subcategories returns the subcategories of the category
func (s *CategoryService) Subcategories(ctx context.Context, slug string) ([]model.Subcategory, error) {
	c, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c.Subcategories == nil {
		return []model.Subcategory{}, nil
	}
	return c.Subcategories, nil
}

// Create adds a category with a unique slug
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	slug := strings.TrimSpace(in.Slug)
	taken, err := s.categories.SlugExists(ctx, slug, "")
	if err != nil {
		return nil, failure(ctx, "Failed to check category slug", err)
	}
	if taken {
		return nil, apperror.Conflict(msgCategorySlugTaken)
	}

	c := &model.Category{Name: strings.TrimSpace(in.Name), Slug: slug, ImageURL: nonEmpty(in.ImageURL)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, write(ctx, err, msgCategorySlugTaken, msgCategoryNotFound, "Failed to create category")
	}

	prometheus.RecordCatalogOperation("category", "create")
	logger.FromContext(ctx).Info("Category created", zap.String("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

// Update merges the supplied fields into the category found by slug
func (s *CategoryService) Update(ctx context.Context, slug string, in UpdateCategoryInput) (*model.Category, error) {
	c, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil && strings.TrimSpace(*in.Slug) != c.Slug {
		next := strings.TrimSpace(*in.Slug)
		taken, err := s.categories.SlugExists(ctx, next, c.ID)
		if err != nil {
			return nil, failure(ctx, "Failed to check category slug", err)
		}
		if taken {
			return nil, apperror.Conflict(msgCategorySlugTaken)
		}
		c.Slug = next
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.ImageURL != nil {
		c.ImageURL = nonEmpty(in.ImageURL)
	}

	if err := s.categories.Save(ctx, c); err != nil {
		return nil, write(ctx, err, msgCategorySlugTaken, msgCategoryNotFound, "Failed to update category")
	}
	prometheus.RecordCatalogOperation("category", "update")
	return c, nil
}

// Delete removes the category and its subcategories; products lose the reference
func (s *CategoryService) Delete(ctx context.Context, slug string) error {
	c, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, c.ID); err != nil {
		return lookup(ctx, err, msgCategoryNotFound, "Failed to delete category", zap.String("slug", slug))
	}
	prometheus.RecordCatalogOperation("category", "delete")
	logger.FromContext(ctx).Info("Category deleted", zap.String("category_id", c.ID), zap.String("slug", slug))
	return nil
}

// SubcategoryInput creates a subcategory
type SubcategoryInput struct {
	Name       string  `json:"name" validate:"required,min=2,max=50"`
	Slug       string  `json:"slug" validate:"required,slug"`
	ImageURL   *string `json:"imageUrl" validate:"omitempty,url"`
	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
}

// UpdateSubcategoryInput is a partial subcategory update
type UpdateSubcategoryInput struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=50"`
	Slug       *string `json:"slug" validate:"omitempty,slug"`
	ImageURL   *string `json:"imageUrl" validate:"omitempty,url"`
	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
}

// SubcategoryService manages the second level of the catalog
type SubcategoryService struct {
	subcategories repository.SubcategoryRepository
	categories    repository.CategoryRepository
}

// NewSubcategoryService creates a new subcategory service
func NewSubcategoryService(subcategories repository.SubcategoryRepository, categories repository.CategoryRepository) *SubcategoryService {
	return &SubcategoryService{subcategories: subcategories, categories: categories}
}

// All returns every subcategory
func (s *SubcategoryService) All(ctx context.Context) ([]model.Subcategory, error) {
	items, err := s.subcategories.FindAll(ctx)
	if err != nil {
		return nil, failure(ctx, "Failed to list subcategories", err)
	}
	return items, nil
}

// List returns one page of subcategories
func (s *SubcategoryService) List(ctx context.Context, filter repository.SubcategoryFilter) (*Page[model.Subcategory], error) {
	items, total, err := s.subcategories.List(ctx, filter)
	if err != nil {
		return nil, failure(ctx, "Failed to list subcategories", err)
	}
	return newPage(items, total, filter.Pagination), nil
}

// Get returns a subcategory by id
func (s *SubcategoryService) Get(ctx context.Context, id string) (*model.Subcategory, error) {
	sub, err := s.subcategories.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgSubcategoryNotFound, "Failed to get subcategory", zap.String("subcategory_id", id))
	}
	return sub, nil
}

func (s *SubcategoryService) ensureCategory(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *id); err != nil {
		return lookup(ctx, err, msgCategoryNotFound, "Failed to get category")
	}
	return nil
}

// Create adds a subcategory, optionally under a category
func (s *SubcategoryService) Create(ctx context.Context, in SubcategoryInput) (*model.Subcategory, error) {
	categoryID := nonEmpty(in.CategoryID)
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.Slug)
	taken, err := s.subcategories.SlugExists(ctx, slug, "")
	if err != nil {
		return nil, failure(ctx, "Failed to check subcategory slug", err)
	}
	if taken {
		return nil, apperror.Conflict(msgSubcategorySlugUsed)
	}

	sub := &model.Subcategory{
		Name:       strings.TrimSpace(in.Name),
		Slug:       slug,
		ImageURL:   nonEmpty(in.ImageURL),
		CategoryID: categoryID,
	}
	if err := s.subcategories.Create(ctx, sub); err != nil {
		return nil, write(ctx, err, msgSubcategorySlugUsed, msgCategoryNotFound, "Failed to create subcategory")
	}
	prometheus.RecordCatalogOperation("subcategory", "create")
	logger.FromContext(ctx).Info("Subcategory created", zap.String("subcategory_id", sub.ID), zap.String("slug", sub.Slug))
	return sub, nil
}

// Update merges the supplied fields
func (s *SubcategoryService) Update(ctx context.Context, id string, in UpdateSubcategoryInput) (*model.Subcategory, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil && strings.TrimSpace(*in.Slug) != sub.Slug {
		next := strings.TrimSpace(*in.Slug)
		taken, err := s.subcategories.SlugExists(ctx, next, sub.ID)
		if err != nil {
			return nil, failure(ctx, "Failed to check subcategory slug", err)
		}
		if taken {
			return nil, apperror.Conflict(msgSubcategorySlugUsed)
		}
		sub.Slug = next
	}
	if in.CategoryID != nil {
		categoryID := nonEmpty(in.CategoryID)
		if err := s.ensureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		sub.CategoryID = categoryID
		sub.Category = nil
	}
	if in.Name != nil {
		sub.Name = strings.TrimSpace(*in.Name)
	}
	if in.ImageURL != nil {
		sub.ImageURL = nonEmpty(in.ImageURL)
	}

	if err := s.subcategories.Save(ctx, sub); err != nil {
		return nil, write(ctx, err, msgSubcategorySlugUsed, msgCategoryNotFound, "Failed to update subcategory")
	}
	prometheus.RecordCatalogOperation("subcategory", "update")
	return sub, nil
}

// Delete removes a subcategory; products lose the reference
func (s *SubcategoryService) Delete(ctx context.Context, id string) error {
	if err := s.subcategories.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgSubcategoryNotFound, "Failed to delete subcategory", zap.String("subcategory_id", id))
	}
	prometheus.RecordCatalogOperation("subcategory", "delete")
	return nil
}
