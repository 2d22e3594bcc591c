package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/internal/model"
)

type bannerRepository struct {
	crud[model.Banner]
}

// NewBannerRepository creates a new banner repository
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepository{crud[model.Banner]{db: db}}
}

func (r *bannerRepository) Create(ctx context.Context, banner *model.Banner) error {
	return r.create(ctx, banner)
}

func (r *bannerRepository) Save(ctx context.Context, banner *model.Banner) error {
	return r.save(ctx, banner)
}

func (r *bannerRepository) FindAll(ctx context.Context) ([]model.Banner, error) {
	return r.findAll(ctx, "created_at DESC", withPreloads("Product"))
}

func (r *bannerRepository) List(ctx context.Context, query ListQuery) ([]model.Banner, int64, error) {
	return r.page(ctx, query.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(query.Search, "name", "description"), query.dateScope("banners"))
	}, "Product")
}

func (r *bannerRepository) FindByID(ctx context.Context, id string) (*model.Banner, error) {
	return r.findByID(ctx, id, "Product")
}

// ExistsByNameAndProduct reports whether another banner already pairs the name with the product
func (r *bannerRepository) ExistsByNameAndProduct(ctx context.Context, name string, productID *string, excludeID string) (bool, error) {
	return r.exists(ctx, func(db *gorm.DB) *gorm.DB {
		db = db.Where("name = ?", name)
		if productID == nil {
			db = db.Where("product_id IS NULL")
		} else {
			db = db.Where("product_id = ?", *productID)
		}
		if excludeID != "" {
			db = db.Where("id <> ?", excludeID)
		}
		return db
	})
}

func (r *bannerRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, slugScope(slug, excludeID))
}

func (r *bannerRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

type newsletterRepository struct {
	crud[model.Newsletter]
}

// NewNewsletterRepository creates a new newsletter repository
func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{crud[model.Newsletter]{db: db}}
}

func (r *newsletterRepository) Create(ctx context.Context, subscription *model.Newsletter) error {
	return r.create(ctx, subscription)
}

func (r *newsletterRepository) FindByEmail(ctx context.Context, email string) (*model.Newsletter, error) {
	return r.findOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	})
}

func (r *newsletterRepository) List(ctx context.Context, query ListQuery) ([]model.Newsletter, int64, error) {
	return r.page(ctx, query.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(query.Search, "email"), query.dateScope("newsletters"))
	})
}

func (r *newsletterRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

type contactRepository struct {
	crud[model.Contact]
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{crud[model.Contact]{db: db}}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.create(ctx, contact)
}

func (r *contactRepository) List(ctx context.Context, query ListQuery) ([]model.Contact, int64, error) {
	return r.page(ctx, query.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(query.Search, "name", "email", "message"), query.dateScope("contacts"))
	})
}
