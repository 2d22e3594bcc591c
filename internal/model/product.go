package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/pkg/pricing"
)

// Product is a sellable catalog item
type Product struct {
	Base
	Name               string              `json:"name" gorm:"type:varchar(100);not null"`
	Slug               string              `json:"slug" gorm:"type:varchar(60);not null;uniqueIndex"`
	ShortDescription   string              `json:"shortDescription" gorm:"type:varchar(200)"`
	Description        *string             `json:"description" gorm:"type:varchar(10000)"`
	CurrentPrice       decimal.Decimal     `json:"currentPrice" gorm:"type:decimal(10,2);not null;index"`
	OriginalPrice      decimal.NullDecimal `json:"originalPrice" gorm:"type:decimal(10,2)"`
	DiscountPercentage int                 `json:"discountPercentage" gorm:"not null;default:0"`
	Rating             decimal.NullDecimal `json:"rating" gorm:"type:decimal(2,1)"`
	ReviewCount        int                 `json:"reviewCount" gorm:"not null;default:0"`
	ImageURL           string              `json:"imageUrl" gorm:"type:varchar(255)"`
	ImageURLs          []string            `json:"imageUrls" gorm:"type:text;serializer:json"`
	IsBestSeller       bool                `json:"isBestSeller" gorm:"not null"`
	IsFeatured         bool                `json:"isFeatured" gorm:"not null"`
	CategoryID         *string             `json:"categoryId" gorm:"type:uuid;index"`
	Category           *Category           `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	SubcategoryID      *string             `json:"subcategoryId" gorm:"type:uuid;index"`
	Subcategory        *Subcategory        `json:"subcategory,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	CreatedByID        *string             `json:"createdById" gorm:"type:uuid;index"`
	CreatedBy          *User               `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL;"`
	Colors             []Color             `json:"colors,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	Stock              []Stock             `json:"stock,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// BeforeSave keeps the discount percentage in line with the prices
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.DiscountPercentage = p.ComputeDiscount()
	return nil
}

// ComputeDiscount returns the whole percent current price is below original price
func (p *Product) ComputeDiscount() int {
	if !p.OriginalPrice.Valid {
		return 0
	}
	return pricing.DiscountPercentage(p.CurrentPrice, &p.OriginalPrice.Decimal)
}

// StockSizes are the size labels accepted for stock rows
var StockSizes = []string{"s", "m", "l", "xl", "xxl"}

// Stock is the quantity on hand for one (product, color, size) combination
type Stock struct {
	Base
	ProductID string `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_color_size"`
	Color     string `json:"color" gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_product_color_size"`
	Size      string `json:"size" gorm:"type:varchar(10);not null;uniqueIndex:idx_stock_product_color_size"`
	Quantity  int    `json:"quantity" gorm:"not null;default:0"`
}

// Color is a color variant offered for a product
type Color struct {
	Base
	Name      string `json:"name" gorm:"type:varchar(50);not null"`
	HexCode   string `json:"hexCode" gorm:"type:varchar(7)"`
	ProductID string `json:"productId" gorm:"type:uuid;not null;index"`
}

// Size is a catalog-wide size label
type Size struct {
	Base
	Name string `json:"name" gorm:"type:varchar(20);not null;uniqueIndex"`
}
