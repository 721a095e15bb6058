package apierr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Error is the structured failure contract returned by every endpoint:
// an HTTP status, a machine-readable code, and a human-readable message.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs an API error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(fiber.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(fiber.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *Error {
	return New(fiber.StatusForbidden, code, message)
}

func NotFound(code, message string) *Error {
	return New(fiber.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(fiber.StatusConflict, code, message)
}

// Handler renders any error returned by a handler as the structured
// envelope. Unknown errors are logged and reported as internal_error.
func Handler(c *fiber.Ctx, err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(fiber.Map{
			"success": false,
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"code":    "request_error",
			"message": fiberErr.Message,
		})
	}

	log.Printf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"code":    "internal_error",
		"message": "internal server error",
	})
}
