package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/payment"
	"github.com/suteetoe/krist-shop/pkg/pricing"
	"github.com/suteetoe/krist-shop/prometheus"
)

// PaymentGateway creates hosted checkout sessions
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (string, error)
}

// CheckoutInput describes the cart being paid for
type CheckoutInput struct {
	UserID   string           `json:"userId" validate:"required,uuid"`
	Products []OrderLineInput `json:"products" validate:"required,min=1,dive"`
	Shipping *decimal.Decimal `json:"shipping"`
	Coupon   *decimal.Decimal `json:"coupon"`
}

// CheckoutSession is the hosted checkout page the client redirects to
type CheckoutSession struct {
	URL string `json:"url"`
}

// CheckoutService turns a cart into a hosted payment session
type CheckoutService struct {
	products  repository.ProductRepository
	gateway   PaymentGateway
	clientURL string
}

// NewCheckoutService creates a new checkout service; gateway may be nil when payments are not configured
func NewCheckoutService(products repository.ProductRepository, gateway PaymentGateway, clientURL string) *CheckoutService {
	return &CheckoutService{products: products, gateway: gateway, clientURL: strings.TrimRight(clientURL, "/")}
}

// Request builds the session request from catalog names, images and prices
func (s *CheckoutService) Request(ctx context.Context, in CheckoutInput) (*payment.SessionRequest, error) {
	for _, amount := range []*decimal.Decimal{in.Shipping, in.Coupon} {
		if amount != nil && amount.IsNegative() {
			return nil, apperror.BadRequest("shipping and coupon must be greater than or equal to 0")
		}
	}

	ids := make([]string, 0, len(in.Products))
	for _, line := range in.Products {
		ids = append(ids, line.ProductID)
	}
	catalog, err := catalogPrices(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}

	req := &payment.SessionRequest{
		SuccessURL: s.clientURL + "?checkout=success",
		CancelURL:  s.clientURL + "/cart",
	}
	for _, line := range in.Products {
		p := catalog[line.ProductID]
		item := payment.LineItem{
			Name:       p.Name,
			UnitAmount: pricing.ToCents(p.CurrentPrice),
			Quantity:   int64(line.Quantity),
		}
		if p.ImageURL != "" {
			item.Images = []string{p.ImageURL}
		}
		req.Items = append(req.Items, item)
	}
	if in.Shipping != nil && in.Shipping.IsPositive() {
		req.Items = append(req.Items, payment.LineItem{Name: "Shipping", UnitAmount: pricing.ToCents(*in.Shipping), Quantity: 1})
	}
	if in.Coupon != nil && in.Coupon.IsPositive() {
		var total int64
		for _, item := range req.Items {
			total += item.UnitAmount * item.Quantity
		}
		// the discount cannot take the session below zero
		req.DiscountAmount = min(pricing.ToCents(*in.Coupon), total)
	}
	return req, nil
}

// Checkout creates the hosted session and returns its URL
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if s.gateway == nil {
		prometheus.RecordCheckoutSession("unavailable")
		return nil, apperror.Internal("Payment provider is not configured", payment.ErrNotConfigured)
	}
	req, err := s.Request(ctx, in)
	if err != nil {
		return nil, err
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, *req)
	if err != nil {
		prometheus.RecordCheckoutSession("error")
		return nil, failure(ctx, "Failed to create checkout session", err, zap.String("user_id", in.UserID))
	}
	prometheus.RecordCheckoutSession("created")
	logger.FromContext(ctx).Info("Checkout session created",
		zap.String("user_id", in.UserID),
		zap.Int("items", len(req.Items)),
		zap.Int64("discount_cents", req.DiscountAmount))
	return &CheckoutSession{URL: url}, nil
}
