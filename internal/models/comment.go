package models

import "github.com/google/uuid"

// Comment is free-text feedback on a product. Comments are immutable after
// creation; only deletion is exposed.
type Comment struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Text      string    `json:"text"`
}
