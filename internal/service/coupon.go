package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/pricing"
)

const (
	msgCouponNotFound = "Coupon not found or expired!"
	msgCouponExpired  = "Coupon has expired!"
	msgCouponExists   = "Coupon with this code already exists."
	msgCouponMissing  = "Coupon not found."
)

// ApplyCouponInput asks for the discount a code gives on a subtotal
type ApplyCouponInput struct {
	Code     string           `json:"code" validate:"required,min=1,max=10"`
	Subtotal *decimal.Decimal `json:"subtotal" validate:"required"`
}

// CouponApplication is the result of applying a coupon
type CouponApplication struct {
	Coupon   *model.Coupon   `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CouponInput creates a coupon
type CouponInput struct {
	Code         string               `json:"code" validate:"required,min=1,max=10"`
	DiscountType pricing.DiscountType `json:"discountType" validate:"required,oneof=percentage fixed"`
	Amount       decimal.Decimal      `json:"amount"`
	ExpiresAt    *time.Time           `json:"expiresAt"`
	IsActive     *bool                `json:"isActive"`
}

// UpdateCouponInput is a partial coupon update; an explicit null expiresAt makes the coupon open ended
type UpdateCouponInput struct {
	Code         *string               `json:"code" validate:"omitempty,min=1,max=10"`
	DiscountType *pricing.DiscountType `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	Amount       *decimal.Decimal      `json:"amount"`
	ExpiresAt    Nullable[time.Time]   `json:"expiresAt"`
	IsActive     *bool                 `json:"isActive"`
}

// CouponService applies and manages discount codes
type CouponService struct {
	coupons repository.CouponRepository
	now     func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons repository.CouponRepository) *CouponService {
	return &CouponService{coupons: coupons, now: time.Now}
}

// Apply computes the discount and remaining total for an active, unexpired code
func (s *CouponService) Apply(ctx context.Context, in ApplyCouponInput) (*CouponApplication, error) {
	if in.Subtotal.IsNegative() {
		return nil, apperror.BadRequest("subtotal must be greater than or equal to 0")
	}
	coupon, err := s.coupons.FindByCode(ctx, in.Code)
	if err != nil {
		return nil, lookup(ctx, err, msgCouponNotFound, "Failed to get coupon", zap.String("code", in.Code))
	}
	if !coupon.IsActive {
		return nil, apperror.NotFound(msgCouponNotFound)
	}
	if coupon.Expired(s.now()) {
		return nil, apperror.BadRequest(msgCouponExpired)
	}

	discount, total := pricing.ApplyCoupon(coupon.DiscountType, coupon.Amount, *in.Subtotal)
	logger.FromContext(ctx).Info("Coupon applied",
		zap.String("code", coupon.Code),
		zap.String("discount", discount.String()),
		zap.String("total", total.String()))
	return &CouponApplication{Coupon: coupon, Discount: discount, Total: total}, nil
}

func checkCouponAmount(kind pricing.DiscountType, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.BadRequest("amount must be greater than 0")
	}
	if kind == pricing.Percentage && amount.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.BadRequest("Percentage discount cannot exceed 100")
	}
	return nil
}

// List returns one page of coupons
func (s *CouponService) List(ctx context.Context, q repository.ListQuery) (*Page[model.Coupon], error) {
	items, total, err := s.coupons.List(ctx, q)
	if err != nil {
		return nil, failure(ctx, "Failed to list coupons", err)
	}
	return newPage(items, total, q.Pagination), nil
}

// Create adds a coupon; codes are stored upper case
func (s *CouponService) Create(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	if err := checkCouponAmount(in.DiscountType, in.Amount); err != nil {
		return nil, err
	}
	coupon := &model.Coupon{
		Code:         strings.ToUpper(strings.TrimSpace(in.Code)),
		DiscountType: in.DiscountType,
		Amount:       in.Amount,
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
	}
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, write(ctx, err, msgCouponExists, msgCouponMissing, "Failed to create coupon")
	}
	logger.FromContext(ctx).Info("Coupon created", zap.String("coupon_id", coupon.ID), zap.String("code", coupon.Code))
	return coupon, nil
}

// Update merges the supplied fields
func (s *CouponService) Update(ctx context.Context, id string, in UpdateCouponInput) (*model.Coupon, error) {
	coupon, err := s.coupons.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgCouponMissing, "Failed to get coupon", zap.String("coupon_id", id))
	}
	if in.Code != nil {
		coupon.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.DiscountType != nil {
		coupon.DiscountType = *in.DiscountType
	}
	if in.Amount != nil {
		coupon.Amount = *in.Amount
	}
	if err := checkCouponAmount(coupon.DiscountType, coupon.Amount); err != nil {
		return nil, err
	}
	if in.ExpiresAt.Set {
		coupon.ExpiresAt = in.ExpiresAt.Ptr()
	}
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}
	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, write(ctx, err, msgCouponExists, msgCouponMissing, "Failed to update coupon")
	}
	return coupon, nil
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, id string) error {
	if err := s.coupons.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgCouponMissing, "Failed to delete coupon", zap.String("coupon_id", id))
	}
	return nil
}
