package model

// Banner is a storefront promotion, optionally pointing at a product
type Banner struct {
	Base
	Name             string   `json:"name" gorm:"type:varchar(100);not null"`
	Slug             string   `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description      *string  `json:"description" gorm:"type:varchar(1000)"`
	ImageURL         string   `json:"imageUrl" gorm:"type:varchar(255);not null"`
	IsActive         bool     `json:"isActive" gorm:"not null"`
	OverrideDiscount *int     `json:"overrideDiscount"`
	ProductID        *string  `json:"productId" gorm:"type:uuid;index"`
	Product          *Product `json:"product,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
}

// Newsletter is an email subscription, linked to the account sharing the email
type Newsletter struct {
	Base
	Email  string  `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	UserID *string `json:"userId" gorm:"type:uuid;index"`
	User   *User   `json:"-" gorm:"constraint:OnDelete:SET NULL;"`
}

// Contact is a message sent through the contact form
type Contact struct {
	Base
	Name        string  `json:"name" gorm:"type:varchar(100);not null"`
	Email       string  `json:"email" gorm:"type:varchar(255);not null"`
	PhoneNumber *string `json:"phoneNumber" gorm:"type:varchar(20)"`
	Message     string  `json:"message" gorm:"type:text;not null"`
}
