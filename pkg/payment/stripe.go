// Package payment creates hosted checkout sessions with the payment provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/suteetoe/krist-shop/pkg/config"
)

// ErrNotConfigured is returned when no provider key is set
var ErrNotConfigured = errors.New("payment provider is not configured")

// LineItem is one purchasable row on the checkout page, priced in the smallest currency unit
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest describes a checkout session
type SessionRequest struct {
	Items []LineItem
	// DiscountAmount is a one-off amount taken off the session total, in the smallest currency unit
	DiscountAmount int64
	SuccessURL     string
	CancelURL      string
}

// Stripe creates checkout sessions through the Stripe API
type Stripe struct {
	api      *client.API
	currency string
}

// NewStripe creates a checkout gateway for the configured account
func NewStripe(cfg config.StripeConfig) (*Stripe, error) {
	if cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &Stripe{api: api, currency: currency}, nil
}

// CreateCheckoutSession returns the hosted checkout URL for the request
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error) {
	params := SessionParams(req, s.currency)
	params.Context = ctx

	if req.DiscountAmount > 0 {
		couponParams := &stripe.CouponParams{
			AmountOff: stripe.Int64(req.DiscountAmount),
			Currency:  stripe.String(s.currency),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
		}
		couponParams.Context = ctx
		coupon, err := s.api.Coupons.New(couponParams)
		if err != nil {
			return "", fmt.Errorf("create coupon: %w", err)
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(coupon.ID)}}
	}

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}

// SessionParams maps a request onto payment-mode checkout session parameters
func SessionParams(req SessionRequest, currency string) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, it := range req.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(it.Name),
		}
		if len(it.Images) > 0 {
			product.Images = stripe.StringSlice(it.Images)
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	return &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  items,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
}
