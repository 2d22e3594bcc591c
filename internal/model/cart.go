package model

// Cart holds one product line in a user's cart
type Cart struct {
	Base
	UserID    string   `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	User      *User    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	ProductID string   `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product;index"`
	Product   *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	Quantity  int      `json:"quantity" gorm:"not null;default:1"`
}

// Wishlist marks a product saved by a user
type Wishlist struct {
	Base
	UserID    string   `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	User      *User    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	ProductID string   `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product;index"`
	Product   *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}
