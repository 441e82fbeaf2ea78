package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/types"
)

// statusFor maps a domain error kind to an HTTP status code. One table so
// every route fails the same way.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindValidation:
		return fiber.StatusBadRequest
	case types.KindPermission:
		return fiber.StatusForbidden
	case types.KindNotFound:
		return fiber.StatusNotFound
	case types.KindConflict:
		return fiber.StatusConflict
	case types.KindDependency:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// DataResponse sends a success payload with the given status
func DataResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// MutationResponse sends a success envelope for writes, optionally carrying
// a non-fatal warning (e.g. metadata deleted but physical file unlink failed).
func MutationResponse(c *fiber.Ctx, data interface{}, warning string) error {
	body := fiber.Map{
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		body["data"] = data
	}
	if warning != "" {
		body["warning"] = warning
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// ErrorResponse translates a domain error into the standard error envelope.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	errorType := "unknown"

	var domainErr *types.Error
	if errors.As(err, &domainErr) {
		status = statusFor(domainErr.Kind)
		errorType = string(domainErr.Kind)
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   err.Error(),
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// FailResponse sends an error envelope with an explicit status, for boundary
// failures (bad token, malformed body) that never reach the services.
func FailResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
