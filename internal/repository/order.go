package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/prometheus"
)

type couponRepository struct {
	crud[model.Coupon]
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{crud[model.Coupon]{db: db}}
}

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.create(ctx, coupon)
}

func (r *couponRepository) Save(ctx context.Context, coupon *model.Coupon) error {
	return r.save(ctx, coupon)
}

func (r *couponRepository) FindByID(ctx context.Context, id string) (*model.Coupon, error) {
	return r.findByID(ctx, id)
}

// FindByCode matches the code case-insensitively
func (r *couponRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return r.findOne(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code)))
	})
}

func (r *couponRepository) List(ctx context.Context, query ListQuery) ([]model.Coupon, int64, error) {
	return r.page(ctx, query.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(query.Search, "code"), query.dateScope("coupons"))
	})
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

type orderRepository struct {
	crud[model.Order]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{crud[model.Order]{db: db}}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate(r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range order.Products {
			order.Products[i].ID = ""
			order.Products[i].OrderID = order.ID
		}
		if len(order.Products) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&order.Products).Error
	}))
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return r.findByID(ctx, id, "Products")
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	return r.page(ctx, filter.Pagination, "created_at DESC", func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.UserID != "" {
			db = db.Where("user_id = ?", filter.UserID)
		}
		return db
	}, "Products")
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"status": status})
}
