package models

import "github.com/google/uuid"

// Rating stores one user's 1..5 score for one product. The composite unique
// index makes the (user, product) pair exclusive at the storage layer, so the
// upsert endpoints can rely on conflict handling instead of a lookup step.
type Rating struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_ratings_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_ratings_user_product" json:"product_id"`
	Value     int       `gorm:"check:value >= 1 AND value <= 5" json:"value"`
}
