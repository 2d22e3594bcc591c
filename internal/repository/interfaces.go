package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/suteetoe/krist-shop/internal/model"
)

// UserFilter narrows user listings
type UserFilter struct {
	ListQuery
	Role model.Role
}

// SubcategoryFilter narrows subcategory listings
type SubcategoryFilter struct {
	ListQuery
	CategorySlug string
}

// ProductFilter narrows product listings
type ProductFilter struct {
	ListQuery
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	CategorySlug    string
	SubcategorySlug string
	IsFeatured      *bool
	IsBestSeller    *bool
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Pagination
	Status model.OrderStatus
	UserID string
}

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository persists top level categories
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Save(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	List(ctx context.Context, query ListQuery) ([]model.Category, int64, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// SubcategoryRepository persists subcategories
type SubcategoryRepository interface {
	Create(ctx context.Context, subcategory *model.Subcategory) error
	Save(ctx context.Context, subcategory *model.Subcategory) error
	FindAll(ctx context.Context) ([]model.Subcategory, error)
	List(ctx context.Context, filter SubcategoryFilter) ([]model.Subcategory, int64, error)
	FindByID(ctx context.Context, id string) (*model.Subcategory, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists products with their colors and stock rows
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	// Update saves the product; non-nil colors or stock replace the existing rows wholesale
	Update(ctx context.Context, product *model.Product, colors *[]model.Color, stock *[]model.Stock) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	UpsertStock(ctx context.Context, stock *model.Stock) (*model.Stock, error)
	Delete(ctx context.Context, id string) error
}

// SizeRepository persists the size catalog
type SizeRepository interface {
	Create(ctx context.Context, size *model.Size) error
	Save(ctx context.Context, size *model.Size) error
	FindAll(ctx context.Context) ([]model.Size, error)
	FindByID(ctx context.Context, id string) (*model.Size, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CartRepository persists cart lines
type CartRepository interface {
	// AddQuantity inserts the line or adds to its quantity in a single statement
	AddQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	// AdjustQuantity changes an existing line by delta and removes it when it drops below one
	AdjustQuantity(ctx context.Context, userID, productID string, delta int) (cart *model.Cart, removed bool, err error)
	Find(ctx context.Context, userID, productID string) (*model.Cart, error)
	ListByUser(ctx context.Context, userID string) ([]model.Cart, error)
	Delete(ctx context.Context, userID, productID string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// WishlistRepository persists wishlist entries
type WishlistRepository interface {
	Create(ctx context.Context, item *model.Wishlist) error
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Wishlist, error)
	Delete(ctx context.Context, userID, productID string) error
}

// CouponRepository persists discount codes
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	Save(ctx context.Context, coupon *model.Coupon) error
	FindByID(ctx context.Context, id string) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, query ListQuery) ([]model.Coupon, int64, error)
	Delete(ctx context.Context, id string) error
}

// OrderRepository persists orders with their line items
type OrderRepository interface {
	// Create writes the order and its line items in one transaction
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// BannerRepository persists storefront banners
type BannerRepository interface {
	Create(ctx context.Context, banner *model.Banner) error
	Save(ctx context.Context, banner *model.Banner) error
	FindAll(ctx context.Context) ([]model.Banner, error)
	List(ctx context.Context, query ListQuery) ([]model.Banner, int64, error)
	FindByID(ctx context.Context, id string) (*model.Banner, error)
	ExistsByNameAndProduct(ctx context.Context, name string, productID *string, excludeID string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// NewsletterRepository persists newsletter subscriptions
type NewsletterRepository interface {
	Create(ctx context.Context, subscription *model.Newsletter) error
	FindByEmail(ctx context.Context, email string) (*model.Newsletter, error)
	List(ctx context.Context, query ListQuery) ([]model.Newsletter, int64, error)
	Delete(ctx context.Context, id string) error
}

// ContactRepository persists contact form messages
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	List(ctx context.Context, query ListQuery) ([]model.Contact, int64, error)
}
