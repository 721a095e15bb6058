package models

import (
	"github.com/google/uuid"
)

// Product is owned by the user who created it and belongs to one category.
type Product struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	CategoryID  uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	Name        string    `gorm:"index" json:"name"`
	Slug        string    `gorm:"index" json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Available   bool      `json:"available"`

	Tags     []Tag          `gorm:"many2many:product_tags;" json:"tags,omitempty"`
	Images   []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Comments []Comment      `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Ratings  []Rating       `gorm:"constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
}

// ProductImage is one entry of a product's carousel gallery. Rows are created
// only through the product create/update composite write.
type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL          string    `json:"url"`
	DisplayOrder int       `json:"display_order"`
}
