package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var activeUsers int64
	if err := h.db.Model(&models.User{}).Where("is_active = ?", true).Count(&activeUsers).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalComments int64
	if err := h.db.Model(&models.Comment{}).Count(&totalComments).Error; err != nil {
		return err
	}

	var totalRatings int64
	if err := h.db.Model(&models.Rating{}).Count(&totalRatings).Error; err != nil {
		return err
	}

	// Products per category
	type categoryCount struct {
		Name  string `json:"name"`
		Count int64  `json:"count"`
	}
	var categoryCounts []categoryCount
	if err := h.db.Model(&models.Product{}).
		Select("categories.name, count(*) as count").
		Joins("join categories on categories.id = products.category_id").
		Group("categories.name").
		Scan(&categoryCounts).Error; err != nil {
		return err
	}

	productsByCategory := make(map[string]int64)
	for _, cc := range categoryCounts {
		productsByCategory[cc.Name] = cc.Count
	}

	// Best rated products (at least one rating)
	type ratedProduct struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		Average   float64 `json:"average"`
		Count     int64   `json:"count"`
	}
	var topRated []ratedProduct
	if err := h.db.Model(&models.Rating{}).
		Select("products.id as product_id, products.name, avg(ratings.value) as average, count(*) as count").
		Joins("join products on products.id = ratings.product_id").
		Group("products.id, products.name").
		Order("average desc").
		Limit(10).
		Scan(&topRated).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":          totalUsers,
			"active_users":         activeUsers,
			"total_products":       totalProducts,
			"total_comments":       totalComments,
			"total_ratings":        totalRatings,
			"products_by_category": productsByCategory,
			"top_rated_products":   topRated,
		},
	})
}
