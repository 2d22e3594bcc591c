package model

// Category is the top level of the catalog taxonomy
type Category struct {
	Base
	Name          string        `json:"name" gorm:"type:varchar(50);not null"`
	Slug          string        `json:"slug" gorm:"type:varchar(60);not null;uniqueIndex"`
	ImageURL      *string       `json:"imageUrl" gorm:"type:varchar(255)"`
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// Subcategory belongs to a category; deleting the category deletes it
type Subcategory struct {
	Base
	Name       string    `json:"name" gorm:"type:varchar(50);not null"`
	Slug       string    `json:"slug" gorm:"type:varchar(60);not null;uniqueIndex"`
	ImageURL   *string   `json:"imageUrl" gorm:"type:varchar(255)"`
	CategoryID *string   `json:"categoryId" gorm:"type:uuid;index"`
	Category   *Category `json:"category,omitempty"`
}
