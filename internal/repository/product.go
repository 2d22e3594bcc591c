package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/prometheus"
)

type productRepository struct {
	crud[model.Product]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{crud[model.Product]{db: db}}
}

// detailPreloads loads everything shown on the product page
func detailPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Subcategory").
		Preload("Colors").
		Preload("Stock").
		Preload("CreatedBy", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "first_name", "last_name")
		})
}

// Create inserts the product together with its colors and stock rows
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		colors, stock := product.Colors, product.Stock
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		if err := insertVariants(tx, product.ID, colors, stock); err != nil {
			return err
		}
		product.Colors, product.Stock = colors, stock
		return nil
	}))
}

func insertVariants(tx *gorm.DB, productID string, colors []model.Color, stock []model.Stock) error {
	for i := range colors {
		colors[i].ID = ""
		colors[i].ProductID = productID
	}
	for i := range stock {
		stock[i].ID = ""
		stock[i].ProductID = productID
	}
	if len(colors) > 0 {
		if err := tx.Create(&colors).Error; err != nil {
			return err
		}
	}
	if len(stock) > 0 {
		if err := tx.Create(&stock).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product, colors *[]model.Color, stock *[]model.Stock) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate(r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return err
		}
		var newColors []model.Color
		var newStock []model.Stock
		if colors != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.Color{}).Error; err != nil {
				return err
			}
			newColors = *colors
		}
		if stock != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.Stock{}).Error; err != nil {
				return err
			}
			newStock = *stock
		}
		return insertVariants(tx, product.ID, newColors, newStock)
	}))
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, detailPreloads, func(db *gorm.DB) *gorm.DB {
		return db.Where("products.id = ?", id)
	})
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	return r.findAll(ctx, "created_at ASC", func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	return r.page(ctx, filter.Pagination, "products.created_at DESC", func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(
			searchScope(filter.Search, "products.name", "products.short_description"),
			filter.dateScope("products"),
		)
		if filter.MinPrice != nil {
			db = db.Where("products.current_price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			db = db.Where("products.current_price <= ?", *filter.MaxPrice)
		}
		if filter.CategorySlug != "" {
			db = db.Where("products.category_id IN (?)",
				r.db.Model(&model.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
		}
		if filter.SubcategorySlug != "" {
			db = db.Where("products.subcategory_id IN (?)",
				r.db.Model(&model.Subcategory{}).Select("id").Where("slug = ?", filter.SubcategorySlug))
		}
		if filter.IsFeatured != nil {
			db = db.Where("products.is_featured = ?", *filter.IsFeatured)
		}
		if filter.IsBestSeller != nil {
			db = db.Where("products.is_best_seller = ?", *filter.IsBestSeller)
		}
		return db
	}, "Category", "Subcategory")
}

// ListAll returns the whole catalog, newest first
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.findAll(ctx, "created_at DESC", withPreloads("Category", "Subcategory", "Stock"))
}

func (r *productRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, slugScope(slug, excludeID))
}

// UpsertStock sets the quantity for a (product, color, size) combination
func (r *productRepository) UpsertStock(ctx context.Context, stock *model.Stock) (*model.Stock, error) {
	defer prometheus.TrackDBOperation("upsert")(time.Now())
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "color"}, {Name: "size"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(stock).Error
	if err != nil {
		return nil, translate(err)
	}

	var saved model.Stock
	err = r.conn(ctx).
		Where("product_id = ? AND color = ? AND size = ?", stock.ProductID, stock.Color, stock.Size).
		First(&saved).Error
	if err != nil {
		return nil, translate(err)
	}
	return &saved, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}
