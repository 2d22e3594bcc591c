package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/pkg/config"
)

func TestNewStripeRequiresKey(t *testing.T) {
	_, err := NewStripe(config.StripeConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewStripe(config.StripeConfig{SecretKey: "sk_test_123", Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "usd", s.currency)
}

func TestSessionParams(t *testing.T) {
	params := SessionParams(SessionRequest{
		Items: []LineItem{
			{Name: "Tee", Images: []string{"https://img/tee.png"}, UnitAmount: 1999, Quantity: 2},
			{Name: "Shipping", UnitAmount: 500, Quantity: 1},
		},
		SuccessURL: "https://shop.example.com?checkout=success",
		CancelURL:  "https://shop.example.com/cart",
	}, "usd")

	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "https://shop.example.com?checkout=success", *params.SuccessURL)
	assert.Equal(t, "https://shop.example.com/cart", *params.CancelURL)
	require.Len(t, params.LineItems, 2)

	tee := params.LineItems[0]
	assert.Equal(t, int64(2), *tee.Quantity)
	assert.Equal(t, int64(1999), *tee.PriceData.UnitAmount)
	assert.Equal(t, "usd", *tee.PriceData.Currency)
	assert.Equal(t, "Tee", *tee.PriceData.ProductData.Name)
	require.Len(t, tee.PriceData.ProductData.Images, 1)

	assert.Nil(t, params.LineItems[1].PriceData.ProductData.Images)
	assert.Empty(t, params.Discounts)
}
