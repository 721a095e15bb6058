package models

import (
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/utils"
)

// Category groups products. Deleting a category removes its products.
type Category struct {
	BaseModel
	Name     string    `gorm:"uniqueIndex" json:"name"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// BeforeCreate derives the slug from the name when none was supplied.
func (cat *Category) BeforeCreate(tx *gorm.DB) error {
	if err := cat.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if cat.Slug == "" {
		cat.Slug = utils.Slugify(cat.Name)
	}
	return nil
}

// Tag is a flat label attached to products. Names are unique; slugs are
// auto-derived from the name at creation time.
type Tag struct {
	BaseModel
	Name     string    `gorm:"uniqueIndex" json:"name"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Products []Product `gorm:"many2many:product_tags;" json:"products,omitempty"`
}

// BeforeCreate derives the slug from the name when none was supplied.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if err := t.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if t.Slug == "" {
		t.Slug = utils.Slugify(t.Name)
	}
	return nil
}
