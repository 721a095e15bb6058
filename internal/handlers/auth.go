package handlers

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer services.Mailer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mailer: mailer}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register creates an inactive user account and emails the activation code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		return apierr.BadRequest("missing_fields", "first_name, email and password are required")
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apierr.BadRequest("invalid_email", "invalid email address")
	}

	if len(req.Password) < 6 {
		return apierr.BadRequest("weak_password", "password must be at least 6 characters")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return apierr.Conflict("email_exists", "user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	activationCode, err := utils.RandomToken()
	if err != nil {
		return err
	}

	user := models.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		DisplayName:    fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		PasswordHash:   passwordHash,
		IsActive:       false,
		ActivationCode: activationCode,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	// Activation email is best-effort; the code can be re-sent by support.
	activationLink := fmt.Sprintf("%s/api/auth/activate/%s", h.cfg.BaseURL, activationCode)
	_ = h.mailer.Send(user.Email, "Activate your account",
		"Welcome! Activate your account by opening this link:\n"+activationLink)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "registration successful, check your email to activate your account",
	})
}

// Activate flips the account's active flag and clears the activation code.
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	code := c.Params("code")

	var user models.User
	if err := h.db.Where("activation_code = ? AND activation_code <> ''", code).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("activation_code_not_found", "activation code not found")
		}
		return err
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"is_active":       true,
		"activation_code": "",
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "account activated, you can log in now",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an active user and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.Unauthorized("invalid_credentials", "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return apierr.Unauthorized("invalid_credentials", "invalid credentials")
	}

	if !user.IsActive {
		return apierr.Forbidden("account_not_activated", "account is not activated")
	}

	accessToken, refreshToken, err := h.issueTokens(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
		},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token and issues a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	var token models.RefreshToken
	if err := h.db.Where("token = ?", req.RefreshToken).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.Unauthorized("invalid_refresh_token", "invalid refresh token")
		}
		return err
	}

	if token.RevokedAt != nil || token.ExpiresAt.Before(time.Now()) {
		return apierr.Unauthorized("invalid_refresh_token", "refresh token expired or revoked")
	}

	now := time.Now()
	if err := h.db.Model(&token).Update("revoked_at", &now).Error; err != nil {
		return err
	}

	accessToken, refreshToken, err := h.issueTokens(token.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword verifies the old password before storing the new hash.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return apierr.Unauthorized("unauthorized", "authentication required")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	if len(req.NewPassword) < 6 {
		return apierr.BadRequest("weak_password", "password must be at least 6 characters")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		return apierr.BadRequest("wrong_password", "old password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := h.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password changed"})
}

// Logout revokes every active refresh token of the current user.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return apierr.Unauthorized("unauthorized", "authentication required")
	}

	now := time.Now()
	if err := h.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}

// DeleteAccount removes the user together with everything they own.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return apierr.Unauthorized("unauthorized", "authentication required")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var productIDs []uuid.UUID
		if err := tx.Model(&models.Product{}).Where("user_id = ?", userID).
			Pluck("id", &productIDs).Error; err != nil {
			return err
		}

		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Rating{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM product_tags WHERE product_id IN ?", productIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.Product{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, "id = ?", userID).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) issueTokens(userID uuid.UUID) (string, string, error) {
	accessToken, err := utils.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}

	refreshValue, err := utils.RandomToken()
	if err != nil {
		return "", "", err
	}

	refresh := models.RefreshToken{
		UserID:    userID,
		Token:     refreshValue,
		ExpiresAt: time.Now().Add(h.cfg.RefreshTokenTTL),
	}
	if err := h.db.Create(&refresh).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshValue, nil
}
