package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the primary key and timestamps shared by every table
type Base struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook assigns a UUID when the caller did not set one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Subcategory{},
		&Size{},
		&Product{},
		&Color{},
		&Stock{},
		&Cart{},
		&Wishlist{},
		&Coupon{},
		&Order{},
		&OrderProduct{},
		&Banner{},
		&Newsletter{},
		&Contact{},
	}
}
