package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrNilDependency is returned by Init when a required dependency is missing.
var ErrNilDependency = errors.New("handler dependency is nil")

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// SendError writes status with an ErrorResponse body.
func SendError(c *fiber.Ctx, status int, msg string, details ...ValidationError) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg, Details: details}) //nolint:wrapcheck
}

// ErrorHandler renders errors escaping the handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal server error"
	}

	return SendError(c, code, msg)
}
