package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrderTotal(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		shipping string
		coupon   string
		want     string
	}{
		{
			name:     "lines plus shipping minus coupon",
			lines:    []Line{{UnitPrice: d("10"), Quantity: 2}, {UnitPrice: d("5"), Quantity: 1}},
			shipping: "3",
			coupon:   "5",
			want:     "23",
		},
		{
			name:     "coupon larger than everything floors at zero",
			lines:    []Line{{UnitPrice: d("4.50"), Quantity: 1}},
			shipping: "0",
			coupon:   "100",
			want:     "0",
		},
		{
			name:     "fractional prices",
			lines:    []Line{{UnitPrice: d("19.99"), Quantity: 3}},
			shipping: "4.95",
			coupon:   "0",
			want:     "64.92",
		},
		{
			name:     "no lines",
			shipping: "7",
			coupon:   "0",
			want:     "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderTotal(tt.lines, d(tt.shipping), d(tt.coupon))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestApplyCoupon(t *testing.T) {
	tests := []struct {
		name     string
		kind     DiscountType
		amount   string
		subtotal string
		discount string
		total    string
	}{
		{"percentage", Percentage, "10", "200", "20.00", "180.00"},
		{"fixed", Fixed, "15", "200", "15", "185"},
		{"fixed above subtotal clamps total", Fixed, "250", "200", "250", "0"},
		{"percentage rounds to cents", Percentage, "15", "33.33", "5.00", "28.33"},
		{"full percentage", Percentage, "100", "80", "80", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discount, total := ApplyCoupon(tt.kind, d(tt.amount), d(tt.subtotal))
			assert.True(t, d(tt.discount).Equal(discount), "discount want %s got %s", tt.discount, discount)
			assert.True(t, d(tt.total).Equal(total), "total want %s got %s", tt.total, total)
			assert.False(t, total.IsNegative())
		})
	}
}

func TestDiscountPercentage(t *testing.T) {
	original := d("100")
	cheaper := d("80")
	odd := d("30")

	assert.Equal(t, 20, DiscountPercentage(cheaper, &original))
	assert.Equal(t, 0, DiscountPercentage(original, &original))
	assert.Equal(t, 0, DiscountPercentage(d("120"), &original))
	assert.Equal(t, 0, DiscountPercentage(cheaper, nil))
	assert.Equal(t, 33, DiscountPercentage(d("20"), &odd))
	zero := decimal.Zero
	assert.Equal(t, 0, DiscountPercentage(decimal.Zero, &zero))
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1999), ToCents(d("19.99")))
	assert.Equal(t, int64(1000), ToCents(d("10")))
	assert.Equal(t, int64(1), ToCents(d("0.005")))
}
