package service

import (
	"context"

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
	msgCartItemNotFound = "Cart item not found!"
	msgWishlistNotFound = "Wishlist item not found"
	msgWishlistExists   = "Product is already in wishlist"
)

// CartLineInput identifies a cart line and how much to change it by
type CartLineInput struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

func (in CartLineInput) amount() int {
	if in.Quantity < 1 {
		return 1
	}
	return in.Quantity
}

// CartSummary is a user's cart with its totals
type CartSummary struct {
	Items         []model.Cart    `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// CartService manages per-user cart lines
type CartService struct {
	carts    repository.CartRepository
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartRepository, users repository.UserRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, users: users, products: products}
}

func (s *CartService) ensureRefs(ctx context.Context, userID, productID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return lookup(ctx, err, msgUserNotFound, "Failed to get user", zap.String("user_id", userID))
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return lookup(ctx, err, msgProductNotFound, "Failed to get product", zap.String("product_id", productID))
	}
	return nil
}

// Add puts the product in the cart or increases the existing line
func (s *CartService) Add(ctx context.Context, in CartLineInput) (*model.Cart, error) {
	if err := s.ensureRefs(ctx, in.UserID, in.ProductID); err != nil {
		return nil, err
	}
	line, err := s.carts.AddQuantity(ctx, in.UserID, in.ProductID, in.amount())
	if err != nil {
		return nil, write(ctx, err, msgCartItemNotFound, msgProductNotFound, "Failed to add to cart",
			zap.String("user_id", in.UserID), zap.String("product_id", in.ProductID))
	}
	prometheus.RecordCartOperation("add")
	logger.FromContext(ctx).Debug("Cart line added",
		zap.String("user_id", in.UserID),
		zap.String("product_id", in.ProductID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

// Increment raises the quantity of an existing line
func (s *CartService) Increment(ctx context.Context, in CartLineInput) (*model.Cart, error) {
	line, _, err := s.adjust(ctx, in, in.amount())
	if err == nil {
		prometheus.RecordCartOperation("increment")
	}
	return line, err
}

// Decrement lowers the quantity of an existing line; removed reports that the line dropped below one and was deleted
func (s *CartService) Decrement(ctx context.Context, in CartLineInput) (line *model.Cart, removed bool, err error) {
	line, removed, err = s.adjust(ctx, in, -in.amount())
	if err == nil {
		prometheus.RecordCartOperation("decrement")
	}
	return line, removed, err
}

func (s *CartService) adjust(ctx context.Context, in CartLineInput, delta int) (*model.Cart, bool, error) {
	line, removed, err := s.carts.AdjustQuantity(ctx, in.UserID, in.ProductID, delta)
	if err != nil {
		return nil, false, lookup(ctx, err, msgCartItemNotFound, "Failed to update cart quantity",
			zap.String("user_id", in.UserID), zap.String("product_id", in.ProductID))
	}
	return line, removed, nil
}

// Get returns the user's cart lines with their total quantity and subtotal
func (s *CartService) Get(ctx context.Context, userID string) (*CartSummary, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, failure(ctx, "Failed to get cart", err, zap.String("user_id", userID))
	}
	if items == nil {
		items = []model.Cart{}
	}
	summary := &CartSummary{Items: items}
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		summary.TotalQuantity += item.Quantity
		if item.Product != nil {
			lines = append(lines, pricing.Line{UnitPrice: item.Product.CurrentPrice, Quantity: item.Quantity})
		}
	}
	summary.Subtotal = pricing.Subtotal(lines).Round(2)
	return summary, nil
}

// Remove deletes one line from the cart
func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.carts.Delete(ctx, userID, productID); err != nil {
		return lookup(ctx, err, msgCartItemNotFound, "Failed to remove cart item",
			zap.String("user_id", userID), zap.String("product_id", productID))
	}
	prometheus.RecordCartOperation("remove")
	return nil
}

// Clear empties the user's cart and returns the number of removed lines
func (s *CartService) Clear(ctx context.Context, userID string) (int64, error) {
	n, err := s.carts.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, failure(ctx, "Failed to clear cart", err, zap.String("user_id", userID))
	}
	prometheus.RecordCartOperation("clear")
	return n, nil
}

// WishlistInput identifies a wishlist entry
type WishlistInput struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ProductID string `json:"productId" validate:"required,uuid"`
}

// WishlistService manages saved products
type WishlistService struct {
	wishlists repository.WishlistRepository
	users     repository.UserRepository
	products  repository.ProductRepository
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(wishlists repository.WishlistRepository, users repository.UserRepository, products repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists, users: users, products: products}
}

// Add saves the product for the user; saving it twice is a conflict
func (s *WishlistService) Add(ctx context.Context, in WishlistInput) (*model.Wishlist, error) {
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, lookup(ctx, err, msgUserNotFound, "Failed to get user", zap.String("user_id", in.UserID))
	}
	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, lookup(ctx, err, msgProductNotFound, "Failed to get product", zap.String("product_id", in.ProductID))
	}

	exists, err := s.wishlists.Exists(ctx, in.UserID, in.ProductID)
	if err != nil {
		return nil, failure(ctx, "Failed to check wishlist", err)
	}
	if exists {
		return nil, apperror.Conflict(msgWishlistExists)
	}

	item := &model.Wishlist{UserID: in.UserID, ProductID: in.ProductID}
	if err := s.wishlists.Create(ctx, item); err != nil {
		return nil, write(ctx, err, msgWishlistExists, msgProductNotFound, "Failed to add to wishlist")
	}
	item.Product = product
	return item, nil
}

// List returns the user's saved products, newest first
func (s *WishlistService) List(ctx context.Context, userID string) ([]model.Wishlist, error) {
	items, err := s.wishlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, failure(ctx, "Failed to get wishlist", err, zap.String("user_id", userID))
	}
	if items == nil {
		items = []model.Wishlist{}
	}
	return items, nil
}

// Remove deletes one wishlist entry
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.wishlists.Delete(ctx, userID, productID); err != nil {
		return lookup(ctx, err, msgWishlistNotFound, "Failed to remove wishlist item",
			zap.String("user_id", userID), zap.String("product_id", productID))
	}
	return nil
}
