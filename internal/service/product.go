package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/export"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/prometheus"
)

const (
	msgProductNotFound   = "Product not found!"
	msgProductSlugTaken  = "Product with this slug already exists."
	msgProductReferences = "Category, Subcategory, or User not found."
)

// ColorInput is one color variant in a product request
type ColorInput struct {
	Name    string `json:"name" validate:"required,max=50"`
	HexCode string `json:"hexCode" validate:"omitempty,hexcolor_code"`
}

// StockInput is one stock row in a product request
type StockInput struct {
	Color    string `json:"color" validate:"required,max=50"`
	Size     string `json:"size" validate:"required,oneof=s m l xl xxl"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

// ProductInput creates a product
type ProductInput struct {
	Name             string           `json:"name" validate:"required,min=2,max=50"`
	Slug             string           `json:"slug" validate:"required,slug"`
	ShortDescription string           `json:"shortDescription" validate:"max=200"`
	Description      *string          `json:"description" validate:"omitempty,max=10000"`
	CurrentPrice     *decimal.Decimal `json:"currentPrice" validate:"required"`
	OriginalPrice    *decimal.Decimal `json:"originalPrice"`
	ImageURL         string           `json:"imageUrl" validate:"required,url"`
	ImageURLs        []string         `json:"imageUrls" validate:"omitempty,dive,url"`
	CategoryID       string           `json:"categoryId" validate:"required,uuid"`
	SubcategoryID    string           `json:"subcategoryId" validate:"required,uuid"`
	IsBestSeller     bool             `json:"isBestSeller"`
	IsFeatured       bool             `json:"isFeatured"`
	Colors           []ColorInput     `json:"colors" validate:"omitempty,dive"`
	Stock            []StockInput     `json:"stock" validate:"omitempty,dive"`
}

// UpdateProductInput is a partial product update; colors and stock replace the existing rows when present.
// An explicit null originalPrice removes the markdown.
type UpdateProductInput struct {
	Name             *string                   `json:"name" validate:"omitempty,min=2,max=50"`
	Slug             *string                   `json:"slug" validate:"omitempty,slug"`
	ShortDescription *string                   `json:"shortDescription" validate:"omitempty,max=200"`
	Description      *string                   `json:"description" validate:"omitempty,max=10000"`
	CurrentPrice     *decimal.Decimal          `json:"currentPrice"`
	OriginalPrice    Nullable[decimal.Decimal] `json:"originalPrice"`
	ImageURL         *string                   `json:"imageUrl" validate:"omitempty,url"`
	ImageURLs        *[]string                 `json:"imageUrls" validate:"omitempty,dive,url"`
	CategoryID       *string                   `json:"categoryId" validate:"omitempty,uuid"`
	SubcategoryID    *string                   `json:"subcategoryId" validate:"omitempty,uuid"`
	IsBestSeller     *bool                     `json:"isBestSeller"`
	IsFeatured       *bool                     `json:"isFeatured"`
	Colors           *[]ColorInput             `json:"colors" validate:"omitempty,dive"`
	Stock            *[]StockInput             `json:"stock" validate:"omitempty,dive"`
}

// StockUpdateInput sets the quantity of one (color, size) combination
type StockUpdateInput struct {
	Color string `json:"color" validate:"required,max=50"`
	Size  string `json:"size" validate:"required,oneof=s m l xl xxl"`
	Stock int    `json:"stock" validate:"min=1"`
}

// ProductService manages the product catalog
type ProductService struct {
	products      repository.ProductRepository
	categories    repository.CategoryRepository
	subcategories repository.SubcategoryRepository
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, subcategories repository.SubcategoryRepository) *ProductService {
	return &ProductService{products: products, categories: categories, subcategories: subcategories}
}

// List returns one page of products matching the filter, newest first
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (*Page[model.Product], error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperror.BadRequest("minPrice cannot be greater than maxPrice.")
	}
	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, failure(ctx, "Failed to list products", err)
	}
	return newPage(items, total, filter.Pagination), nil
}

// Get returns a product with its variants and taxonomy
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(ctx, err, msgProductNotFound, "Failed to get product", zap.String("product_id", id))
	}
	return p, nil
}

func checkPrices(current decimal.Decimal, original *decimal.Decimal) error {
	if current.IsNegative() {
		return apperror.BadRequest("currentPrice must not be less than 0")
	}
	if original != nil && original.IsNegative() {
		return apperror.BadRequest("originalPrice must not be less than 0")
	}
	return nil
}

func toColors(in []ColorInput) []model.Color {
	out := make([]model.Color, 0, len(in))
	for _, c := range in {
		out = append(out, model.Color{Name: strings.TrimSpace(c.Name), HexCode: c.HexCode})
	}
	return out
}

// toStock rejects requests listing the same (color, size) twice
func toStock(in []StockInput) ([]model.Stock, error) {
	seen := make(map[string]bool, len(in))
	out := make([]model.Stock, 0, len(in))
	for _, st := range in {
		color, size := strings.TrimSpace(st.Color), strings.ToLower(st.Size)
		key := strings.ToLower(color) + "|" + size
		if seen[key] {
			return nil, apperror.BadRequestf("Duplicate stock entry for color %q and size %q.", color, size)
		}
		seen[key] = true
		out = append(out, model.Stock{Color: color, Size: size, Quantity: st.Quantity})
	}
	return out, nil
}

func (s *ProductService) ensureTaxonomy(ctx context.Context, categoryID, subcategoryID *string) error {
	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return lookup(ctx, err, msgProductReferences, "Failed to get category")
		}
	}
	if subcategoryID != nil {
		if _, err := s.subcategories.FindByID(ctx, *subcategoryID); err != nil {
			return lookup(ctx, err, msgProductReferences, "Failed to get subcategory")
		}
	}
	return nil
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug, excludeID string) error {
	taken, err := s.products.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return failure(ctx, "Failed to check product slug", err)
	}
	if taken {
		return apperror.Conflict(msgProductSlugTaken)
	}
	return nil
}

// Create adds a product owned by the caller together with its colors and stock
func (s *ProductService) Create(ctx context.Context, creatorID string, in ProductInput) (*model.Product, error) {
	if in.CurrentPrice == nil {
		return nil, apperror.BadRequest("currentPrice is required")
	}
	if err := checkPrices(*in.CurrentPrice, in.OriginalPrice); err != nil {
		return nil, err
	}
	stock, err := toStock(in.Stock)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.Slug)
	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}
	if err := s.ensureTaxonomy(ctx, &in.CategoryID, &in.SubcategoryID); err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:             strings.TrimSpace(in.Name),
		Slug:             slug,
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		Description:      nonEmpty(in.Description),
		CurrentPrice:     *in.CurrentPrice,
		ImageURL:         in.ImageURL,
		ImageURLs:        in.ImageURLs,
		IsBestSeller:     in.IsBestSeller,
		IsFeatured:       in.IsFeatured,
		CategoryID:       strPtr(in.CategoryID),
		SubcategoryID:    strPtr(in.SubcategoryID),
		Colors:           toColors(in.Colors),
		Stock:            stock,
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = decimal.NewNullDecimal(*in.OriginalPrice)
	}
	if creatorID != "" {
		p.CreatedByID = strPtr(creatorID)
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	p.DiscountPercentage = p.ComputeDiscount()

	if err := s.products.Create(ctx, p); err != nil {
		return nil, write(ctx, err, msgProductSlugTaken, msgProductReferences, "Failed to create product", zap.String("slug", slug))
	}

	prometheus.RecordCatalogOperation("product", "create")
	logger.FromContext(ctx).Info("Product created",
		zap.String("product_id", p.ID),
		zap.String("slug", p.Slug),
		zap.String("price", p.CurrentPrice.String()))
	return p, nil
}

// Update merges the supplied fields; colors and stock are replaced wholesale when supplied
func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Slug != nil && strings.TrimSpace(*in.Slug) != p.Slug {
		next := strings.TrimSpace(*in.Slug)
		if err := s.ensureSlugFree(ctx, next, p.ID); err != nil {
			return nil, err
		}
		p.Slug = next
	}
	if err := s.ensureTaxonomy(ctx, nonEmpty(in.CategoryID), nonEmpty(in.SubcategoryID)); err != nil {
		return nil, err
	}

	current := p.CurrentPrice
	if in.CurrentPrice != nil {
		current = *in.CurrentPrice
	}
	if err := checkPrices(current, in.OriginalPrice.Ptr()); err != nil {
		return nil, err
	}
	p.CurrentPrice = current
	if in.OriginalPrice.Set {
		p.OriginalPrice = decimal.NullDecimal{Decimal: in.OriginalPrice.Val, Valid: in.OriginalPrice.Valid}
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.ShortDescription != nil {
		p.ShortDescription = strings.TrimSpace(*in.ShortDescription)
	}
	if in.Description != nil {
		p.Description = nonEmpty(in.Description)
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.ImageURLs != nil {
		p.ImageURLs = *in.ImageURLs
	}
	if in.CategoryID != nil {
		p.CategoryID = nonEmpty(in.CategoryID)
	}
	if in.SubcategoryID != nil {
		p.SubcategoryID = nonEmpty(in.SubcategoryID)
	}
	if in.IsBestSeller != nil {
		p.IsBestSeller = *in.IsBestSeller
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.DiscountPercentage = p.ComputeDiscount()

	var colors *[]model.Color
	if in.Colors != nil {
		c := toColors(*in.Colors)
		colors = &c
	}
	var stock *[]model.Stock
	if in.Stock != nil {
		st, err := toStock(*in.Stock)
		if err != nil {
			return nil, err
		}
		stock = &st
	}

	// associations are written separately
	p.Category, p.Subcategory, p.CreatedBy = nil, nil, nil
	if err := s.products.Update(ctx, p, colors, stock); err != nil {
		return nil, write(ctx, err, msgProductSlugTaken, msgProductNotFound, "Failed to update product", zap.String("product_id", id))
	}

	prometheus.RecordCatalogOperation("product", "update")
	return s.Get(ctx, id)
}

// SetStock upserts the quantity of one (color, size) combination
func (s *ProductService) SetStock(ctx context.Context, id string, in StockUpdateInput) (*model.Stock, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	row, err := s.products.UpsertStock(ctx, &model.Stock{
		ProductID: id,
		Color:     strings.TrimSpace(in.Color),
		Size:      strings.ToLower(in.Size),
		Quantity:  in.Stock,
	})
	if err != nil {
		return nil, write(ctx, err, "Stock entry already exists.", msgProductNotFound, "Failed to update stock", zap.String("product_id", id))
	}
	prometheus.RecordCatalogOperation("stock", "upsert")
	return row, nil
}

// Delete removes a product together with its stock, colors, cart and wishlist rows
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return lookup(ctx, err, msgProductNotFound, "Failed to delete product", zap.String("product_id", id))
	}
	prometheus.RecordCatalogOperation("product", "delete")
	logger.FromContext(ctx).Info("Product deleted", zap.String("product_id", id))
	return nil
}

// Export writes the whole catalog as a spreadsheet, one row per product
func (s *ProductService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return failure(ctx, "Failed to load products for export", err)
	}

	sheet := export.Sheet{
		Name: "Products",
		Header: []string{
			"ID", "Name", "Slug", "Short Description", "Current Price", "Original Price",
			"Discount %", "Category", "Subcategory", "Stock", "Best Seller", "Featured",
			"Image", "Created At", "Updated At",
		},
	}
	for _, p := range products {
		original := ""
		if p.OriginalPrice.Valid {
			original = p.OriginalPrice.Decimal.StringFixed(2)
		}
		category, subcategory := "", ""
		if p.Category != nil {
			category = p.Category.Name
		}
		if p.Subcategory != nil {
			subcategory = p.Subcategory.Name
		}
		quantity := 0
		for _, st := range p.Stock {
			quantity += st.Quantity
		}
		sheet.Rows = append(sheet.Rows, []interface{}{
			p.ID, p.Name, p.Slug, p.ShortDescription, p.CurrentPrice.StringFixed(2), original,
			p.DiscountPercentage, category, subcategory, quantity, p.IsBestSeller, p.IsFeatured,
			p.ImageURL, p.CreatedAt.Format("2006-01-02 15:04:05"), p.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if err := export.Write(w, sheet); err != nil {
		return failure(ctx, "Failed to write product export", err)
	}
	logger.FromContext(ctx).Info("Products exported", zap.Int("count", len(products)))
	return nil
}

// ExportFilename names the export download
func ExportFilename(prefix string) string {
	return fmt.Sprintf("%s.xlsx", prefix)
}
