package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/prometheus"
)

type cartRepository struct {
	crud[model.Cart]
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{crud[model.Cart]{db: db}}
}

func lineScope(userID, productID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND product_id = ?", userID, productID)
	}
}

func (r *cartRepository) AddQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	defer prometheus.TrackDBOperation("upsert")(time.Now())
	line := &model.Cart{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.conn(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("carts.quantity + EXCLUDED.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(line).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.Find(ctx, userID, productID)
}

func (r *cartRepository) AdjustQuantity(ctx context.Context, userID, productID string, delta int) (*model.Cart, bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	var (
		line    model.Cart
		removed bool
	)
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(lineScope(userID, productID)).
			First(&line).Error
		if err != nil {
			return err
		}

		line.Quantity += delta
		if line.Quantity < 1 {
			removed = true
			return tx.Delete(&model.Cart{}, "id = ?", line.ID).Error
		}
		return tx.Model(&line).Updates(map[string]interface{}{"quantity": line.Quantity}).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	if removed {
		return &line, true, nil
	}
	updated, err := r.Find(ctx, userID, productID)
	return updated, false, err
}

// Find returns the line with its product loaded
func (r *cartRepository) Find(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return r.findOne(ctx, withPreloads("Product"), lineScope(userID, productID))
}

func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]model.Cart, error) {
	return r.findAll(ctx, "created_at DESC", withPreloads("Product"), func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *cartRepository) Delete(ctx context.Context, userID, productID string) error {
	n, err := r.deleteWhere(ctx, "user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(ctx, "user_id = ?", userID)
}

type wishlistRepository struct {
	crud[model.Wishlist]
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{crud[model.Wishlist]{db: db}}
}

func (r *wishlistRepository) Create(ctx context.Context, item *model.Wishlist) error {
	return r.create(ctx, item)
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	return r.exists(ctx, lineScope(userID, productID))
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID string) ([]model.Wishlist, error) {
	return r.findAll(ctx, "created_at DESC", withPreloads("Product"), func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, productID string) error {
	n, err := r.deleteWhere(ctx, "user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
