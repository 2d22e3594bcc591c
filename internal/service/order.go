package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/pricing"
	"github.com/suteetoe/krist-shop/prometheus"
)

const (
	msgOrderNotFound = "Order not found!"

	// EventOrderCreated is pushed when a customer places an order
	EventOrderCreated = "order.created"
	// EventOrderStatus is pushed when an admin changes an order status
	EventOrderStatus = "order.status"
)

// Broadcaster pushes events to live subscribers
type Broadcaster interface {
	Broadcast(eventType string, data interface{})
}

// OrderLineInput is one requested product and quantity
type OrderLineInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// OrderInput places an order
type OrderInput struct {
	UserID         string               `json:"userId" validate:"required,uuid"`
	Products       []OrderLineInput     `json:"products" validate:"required,min=1,dive"`
	DeliveryMethod model.DeliveryMethod `json:"deliveryMethod" validate:"required,oneof=courier pickup postal"`
	PaymentMethod  model.PaymentMethod  `json:"paymentMethod" validate:"required,oneof=payme click cash"`
	Shipping       decimal.Decimal      `json:"shipping"`
	Coupon         decimal.Decimal      `json:"coupon"`
	Region         string               `json:"region" validate:"required,max=100"`
	District       string               `json:"district" validate:"required,max=100"`
	ExtraAddress   *string              `json:"extraAddress" validate:"omitempty,max=255"`
}

// OrderStatusInput changes the status of an order
type OrderStatusInput struct {
	Status model.OrderStatus `json:"status" validate:"required,oneof=pending processing delivered canceled"`
}

// OrderService places orders and tracks their fulfilment
type OrderService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	products repository.ProductRepository
	events   Broadcaster
}

// NewOrderService creates a new order service; events may be nil
func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, products repository.ProductRepository, events Broadcaster) *OrderService {
	return &OrderService{orders: orders, users: users, products: products, events: events}
}

func (s *OrderService) publish(eventType string, order *model.Order) {
	if s.events != nil {
		s.events.Broadcast(eventType, order)
	}
}

// catalogPrices loads every requested product once, failing on the first unknown id
func catalogPrices(ctx context.Context, products repository.ProductRepository, ids []string) (map[string]model.Product, error) {
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, failure(ctx, "Failed to load products", err)
	}
	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperror.NotFound("Product not found: " + id)
		}
	}
	return byID, nil
}

// Create prices every line from the catalog and stores the order with its lines in one transaction
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*model.Order, error) {
	if in.Shipping.IsNegative() {
		return nil, apperror.BadRequest("shipping must be greater than or equal to 0")
	}
	if in.Coupon.IsNegative() {
		return nil, apperror.BadRequest("coupon must be greater than or equal to 0")
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, lookup(ctx, err, msgUserNotFound, "Failed to get user", zap.String("user_id", in.UserID))
	}

	ids := make([]string, 0, len(in.Products))
	for _, line := range in.Products {
		ids = append(ids, line.ProductID)
	}
	catalog, err := catalogPrices(ctx, s.products, ids)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:         in.UserID,
		DeliveryMethod: in.DeliveryMethod,
		PaymentMethod:  in.PaymentMethod,
		Region:         strings.TrimSpace(in.Region),
		District:       strings.TrimSpace(in.District),
		ExtraAddress:   nonEmpty(in.ExtraAddress),
		Status:         model.OrderPending,
		Shipping:       in.Shipping.Round(2),
		Coupon:         in.Coupon.Round(2),
	}
	lines := make([]pricing.Line, 0, len(in.Products))
	for _, req := range in.Products {
		p := catalog[req.ProductID]
		line := pricing.Line{UnitPrice: p.CurrentPrice, Quantity: req.Quantity}
		lines = append(lines, line)
		order.Products = append(order.Products, model.OrderProduct{
			ProductID:   strPtr(p.ID),
			ProductName: p.Name,
			Quantity:    req.Quantity,
			UnitPrice:   p.CurrentPrice,
			Price:       line.Total().Round(2),
		})
	}
	order.Price = pricing.OrderTotal(lines, order.Shipping, order.Coupon)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, write(ctx, err, "Order already exists.", msgProductNotFound, "Failed to create order",
			zap.String("user_id", in.UserID))
	}

	total, _ := order.Price.Float64()
	prometheus.RecordOrderCreated(total)
	logger.FromContext(ctx).Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("lines", len(order.Products)),
		zap.String("price", order.Price.String()))
	s.publish(EventOrderCreated, order)
	return order, nil
}

// List returns one page of orders, optionally narrowed by status or user
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) (*Page[model.Order], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.BadRequest("Status must be one of: pending, processing, delivered, canceled")
	}
	items, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, failure(ctx, "Failed to list orders", err)
	}
	return newPage(items, total, filter.Pagination), nil
}

// Get returns an order with its lines
func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgOrderNotFound, "Failed to get order", zap.String("order_id", id))
	}
	return order, nil
}

// UpdateStatus moves the order to any known status
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, apperror.BadRequest("Status must be one of: pending, processing, delivered, canceled")
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, lookup(ctx, err, msgOrderNotFound, "Failed to update order status", zap.String("order_id", id))
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prometheus.RecordOrderStatus(string(status))
	logger.FromContext(ctx).Info("Order status updated", zap.String("order_id", id), zap.String("status", string(status)))
	s.publish(EventOrderStatus, order)
	return order, nil
}
