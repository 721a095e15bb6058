package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// ProductHandler manages product endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	if slug := c.Query("slug"); slug != "" {
		query = query.Where("slug = ?", slug)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", val)
		}
	}

	if available := c.Query("available"); available != "" {
		query = query.Where("available = ?", available == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").Preload("Tags").Preload("Images").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product with its relations and rating summary.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apierr.BadRequest("invalid_id", "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Category").
		Preload("Tags").
		Preload("Images").
		Preload("Comments").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("product_not_found", "product not found")
		}
		return err
	}

	var summary struct {
		Average float64 `json:"average"`
		Count   int64   `json:"count"`
	}
	if err := h.db.Model(&models.Rating{}).
		Where("product_id = ?", id).
		Select("COALESCE(AVG(value), 0) AS average, COUNT(*) AS count").
		Scan(&summary).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
		"rating":  summary,
	})
}

type productRequest struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	Available   *bool          `json:"available"`
	CategoryID  string         `json:"category_id"`
	TagIDs      []string       `json:"tag_ids"`
	Images      []imageRequest `json:"images"`
}

type imageRequest struct {
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

// CreateProduct performs the composite write: one product row, its tag
// associations and its carousel image rows, all inside one transaction.
// Validation happens before any row is created.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return apierr.Unauthorized("unauthorized", "authentication required")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return err
	}
	product.UserID = userID

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.checkCategory(tx, product.CategoryID); err != nil {
			return err
		}

		tags, err := h.resolveTags(tx, req.TagIDs)
		if err != nil {
			return err
		}
		product.Tags = tags

		// Creates the product, its tag links and the image batch together.
		return tx.Create(&product).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates scalar fields and replaces the tag set and image
// carousel transactionally. Ownership is enforced by the authorization policy.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apierr.BadRequest("invalid_id", "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("product_not_found", "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	product, err := h.buildProductFromRequest(req)
	if err != nil {
		return err
	}
	product.ID = existing.ID
	product.UserID = existing.UserID
	product.CreatedAt = existing.CreatedAt

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.checkCategory(tx, product.CategoryID); err != nil {
			return err
		}

		tags, err := h.resolveTags(tx, req.TagIDs)
		if err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"name":        product.Name,
			"slug":        product.Slug,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"available":   product.Available,
			"category_id": product.CategoryID,
		}).Error; err != nil {
			return err
		}

		if len(product.Images) > 0 {
			for i := range product.Images {
				product.Images[i].ProductID = product.ID
			}
			if err := tx.Create(&product.Images).Error; err != nil {
				return err
			}
		}

		return tx.Model(&existing).Association("Tags").Replace(tags)
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product and everything hanging off it.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apierr.BadRequest("invalid_id", "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_tags WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) buildProductFromRequest(req productRequest) (models.Product, error) {
	var product models.Product

	if req.Name == "" {
		return product, apierr.BadRequest("missing_fields", "name is required")
	}
	if req.Price < 0 {
		return product, apierr.BadRequest("invalid_price", "price must not be negative")
	}
	if req.Stock < 0 {
		return product, apierr.BadRequest("invalid_stock", "stock must not be negative")
	}
	if req.CategoryID == "" {
		return product, apierr.BadRequest("missing_fields", "category_id is required")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return product, apierr.BadRequest("invalid_category_id", "invalid category_id")
	}

	product = models.Product{
		CategoryID:  categoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Available:   true,
	}
	if req.Available != nil {
		product.Available = *req.Available
	}
	if product.Slug == "" {
		product.Slug = utils.Slugify(req.Name)
	}

	for i, img := range req.Images {
		if img.URL == "" {
			return product, apierr.BadRequest("invalid_image", "image url must not be empty")
		}
		order := img.DisplayOrder
		if order == 0 {
			order = i
		}
		product.Images = append(product.Images, models.ProductImage{
			URL:          img.URL,
			DisplayOrder: order,
		})
	}

	return product, nil
}

func (h *ProductHandler) checkCategory(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apierr.BadRequest("unknown_category", "category does not exist")
	}
	return nil
}

// resolveTags maps tag IDs to existing rows. Tags are assigned, never created
// here; a single unknown ID fails the whole request.
func (h *ProductHandler) resolveTags(tx *gorm.DB, tagIDs []string) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(tagIDs))
	for _, value := range tagIDs {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, apierr.BadRequest("invalid_tag_id", "invalid tag id: "+value)
		}
		ids = append(ids, id)
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, apierr.BadRequest("unknown_tag", "one or more tags do not exist")
	}

	return tags, nil
}
