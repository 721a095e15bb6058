package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// PasswordResetHandler manages the password recovery endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer services.Mailer
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, mailer: mailer}
}

type recoveryRequest struct {
	Email string `json:"email"`
}

// RecoveryPassword starts the recovery flow: generates a 6-digit code,
// stores it with a 10 minute expiry and emails it to the user.
func (h *PasswordResetHandler) RecoveryPassword(c *fiber.Ctx) error {
	var req recoveryRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	if req.Email == "" {
		return apierr.BadRequest("missing_fields", "email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("user_not_found", "user not found")
		}
		return err
	}

	code, err := generateRecoveryCode()
	if err != nil {
		return err
	}

	// Expire any previous unused codes for this email.
	if err := h.db.Model(&models.PasswordResetToken{}).
		Where("email = ? AND used_at IS NULL", req.Email).
		Update("expires_at", time.Now()).Error; err != nil {
		return err
	}

	record := models.PasswordResetToken{
		Email:     req.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return err
	}

	_ = h.mailer.Send(req.Email, "Password recovery code",
		"Your password recovery code is: "+code+"\nIt expires in 10 minutes.")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password recovery code has been sent to your email",
	})
}

type setRecoveredPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// SetRecoveredPassword verifies the emailed code and overwrites the password.
func (h *PasswordResetHandler) SetRecoveredPassword(c *fiber.Ctx) error {
	var req setRecoveredPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid_body", "invalid request body")
	}

	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return apierr.BadRequest("missing_fields", "email, code and new_password are required")
	}

	if len(req.NewPassword) < 6 {
		return apierr.BadRequest("weak_password", "password must be at least 6 characters")
	}

	var record models.PasswordResetToken
	if err := h.db.Where("email = ? AND used_at IS NULL", req.Email).
		Order("created_at desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("recovery_code_not_found", "no recovery code requested for this email")
		}
		return err
	}

	if record.ExpiresAt.Before(time.Now()) {
		return apierr.BadRequest("recovery_code_expired", "recovery code expired")
	}

	if record.Code != req.Code {
		return apierr.BadRequest("invalid_recovery_code", "invalid recovery code")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := h.db.Model(&models.User{}).
		Where("email = ?", record.Email).
		Update("password_hash", hash).Error; err != nil {
		return err
	}

	now := time.Now()
	record.UsedAt = &now
	if err := h.db.Save(&record).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password recovered successfully",
	})
}

func generateRecoveryCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
