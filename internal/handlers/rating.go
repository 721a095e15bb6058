package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
)

// RatingHandler manages the per-user product rating upsert. The composite
// unique index on (user_id, product_id) plus conflict-aware writes keep the
// one-row-per-pair invariant without a separate lookup step, so concurrent
// requests for the same pair cannot create duplicates.
type RatingHandler struct {
	db *gorm.DB
}

// NewRatingHandler constructs RatingHandler.
func NewRatingHandler(db *gorm.DB) *RatingHandler {
	return &RatingHandler{db: db}
}

type ratingRequest struct {
	Value int `json:"value"`
}

// SetRating records the current user's first rating for a product. If the
// pair already has a row the insert is a no-op and the caller is told to
// PATCH instead.
func (h *RatingHandler) SetRating(c *fiber.Ctx) error {
	userID, productID, value, err := h.parseRatingRequest(c)
	if err != nil {
		return err
	}

	rating := models.Rating{
		UserID:    userID,
		ProductID: productID,
		Value:     value,
	}

	res := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&rating)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return apierr.Conflict("already_rated", "product already rated, use PATCH to change the rating")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rating})
}

// UpdateRating changes an existing rating in place. If the pair has no row
// yet nothing is written and the caller is told to POST first.
func (h *RatingHandler) UpdateRating(c *fiber.Ctx) error {
	userID, productID, value, err := h.parseRatingRequest(c)
	if err != nil {
		return err
	}

	res := h.db.Model(&models.Rating{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return apierr.NotFound("not_rated", "product not rated yet, use POST to rate it")
	}

	var rating models.Rating
	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rating).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": rating})
}

// parseRatingRequest validates the product, the payload and the rating value
// before any write is attempted.
func (h *RatingHandler) parseRatingRequest(c *fiber.Ctx) (uuid.UUID, uuid.UUID, int, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, 0, apierr.Unauthorized("unauthorized", "authentication required")
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, 0, apierr.BadRequest("invalid_id", "invalid id")
	}

	var req ratingRequest
	if err := c.BodyParser(&req); err != nil {
		return uuid.Nil, uuid.Nil, 0, apierr.BadRequest("invalid_body", "invalid request body")
	}

	if req.Value < 1 || req.Value > 5 {
		return uuid.Nil, uuid.Nil, 0, apierr.BadRequest("invalid_rating", "rating value must be between 1 and 5")
	}

	var product models.Product
	if err := h.db.Select("id").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, 0, apierr.NotFound("product_not_found", "product not found")
		}
		return uuid.Nil, uuid.Nil, 0, err
	}

	return userID, productID, req.Value, nil
}
