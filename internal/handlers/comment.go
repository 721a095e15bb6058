package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
)

// CommentHandler manages product comments. Comments cannot be edited, only
// created and deleted.
type CommentHandler struct {
	db *gorm.DB
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

type commentRequest struct {
	Text string `json:"text"`
}

// CreateComment attaches a comment from the current user to a product.
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return apierr.Unauthorized("unauthorized", "authentication required")
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apierr.BadRequest("invalid_id", "invalid id")
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	if req.Text == "" {
		return apierr.BadRequest("missing_fields", "text is required")
	}

	var count int64
	if err := h.db.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apierr.NotFound("product_not_found", "product not found")
	}

	comment := models.Comment{
		UserID:    userID,
		ProductID: productID,
		Text:      req.Text,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": comment})
}

// DeleteComment removes a comment. Ownership is enforced by the
// authorization policy.
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apierr.BadRequest("invalid_id", "invalid id")
	}

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("comment_not_found", "comment not found")
		}
		return err
	}

	if err := h.db.Delete(&comment).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
