package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suteetoe/krist-shop/pkg/pricing"
)

// Coupon is a discount code redeemable against a subtotal
type Coupon struct {
	Base
	Code         string               `json:"code" gorm:"type:varchar(10);not null;uniqueIndex"`
	DiscountType pricing.DiscountType `json:"discountType" gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal      `json:"amount" gorm:"type:decimal(10,2);not null"`
	ExpiresAt    *time.Time           `json:"expiresAt"`
	IsActive     bool                 `json:"isActive" gorm:"not null"`
}

// Expired reports whether the coupon expiry has passed at now
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered"
	OrderCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderDelivered, OrderCanceled:
		return true
	}
	return false
}

// DeliveryMethod is how an order reaches the customer
type DeliveryMethod string

const (
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryPostal  DeliveryMethod = "postal"
)

// PaymentMethod is how an order is paid
type PaymentMethod string

const (
	PaymentPayme PaymentMethod = "payme"
	PaymentClick PaymentMethod = "click"
	PaymentCash  PaymentMethod = "cash"
)

// Order is a placed purchase with an address snapshot and a computed total
type Order struct {
	Base
	UserID         string          `json:"userId" gorm:"type:uuid;not null;index"`
	User           *User           `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	Products       []OrderProduct  `json:"products" gorm:"constraint:OnDelete:CASCADE;"`
	DeliveryMethod DeliveryMethod  `json:"deliveryMethod" gorm:"type:varchar(20);not null"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20);not null"`
	Region         string          `json:"region" gorm:"type:varchar(100);not null"`
	District       string          `json:"district" gorm:"type:varchar(100);not null"`
	ExtraAddress   *string         `json:"extraAddress" gorm:"type:varchar(255)"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	Shipping       decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2);not null"`
	Coupon         decimal.Decimal `json:"coupon" gorm:"type:decimal(10,2);not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// OrderProduct is an immutable line item snapshot taken when the order was placed
type OrderProduct struct {
	Base
	OrderID     string          `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID   *string         `json:"productId" gorm:"type:uuid;index"`
	Product     *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	ProductName string          `json:"productName" gorm:"type:varchar(100);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}
