// Package pricing holds the money arithmetic shared by products, coupons, carts and orders.
// All amounts are decimal and rounded half away from zero to two places on output.
package pricing

import (
	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon amount is interpreted
type DiscountType string

const (
	Percentage DiscountType = "percentage"
	Fixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Line is a priced quantity of one product
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns unit price times quantity
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums the line totals
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// OrderTotal is the sum of line totals plus shipping minus the coupon value, never below zero
func OrderTotal(lines []Line, shipping, coupon decimal.Decimal) decimal.Decimal {
	total := Subtotal(lines).Add(shipping).Sub(coupon)
	return floorZero(total).Round(2)
}

// ApplyCoupon computes the discount for subtotal and the remaining total, clamped at zero
func ApplyCoupon(kind DiscountType, amount, subtotal decimal.Decimal) (discount, total decimal.Decimal) {
	switch kind {
	case Percentage:
		discount = subtotal.Mul(amount).Div(hundred)
	default:
		discount = amount
	}
	total = floorZero(subtotal.Sub(discount))
	return discount.Round(2), total.Round(2)
}

// DiscountPercentage is the whole percent that current is below original, zero when there is no markdown
func DiscountPercentage(current decimal.Decimal, original *decimal.Decimal) int {
	if original == nil || !original.IsPositive() || !original.GreaterThan(current) || current.IsNegative() {
		return 0
	}
	pct := original.Sub(current).Div(*original).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// ToCents converts a decimal amount into the smallest currency unit
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
