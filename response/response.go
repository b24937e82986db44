// Package response writes the JSON envelope every route answers with:
// {"status", "message", "data"}.
package response

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
)

var verbose atomic.Bool

// SetVerbose adds the full error chain to error responses. Development only.
func SetVerbose(v bool) { verbose.Store(v) }

func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// Error maps err to its HTTP status. Internal failures get a generic
// message; client errors carry the innermost cause.
func Error(c *fiber.Ctx, err error) error {
	status, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "err", err)
	}

	body := fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	}
	if verbose.Load() {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	switch kind {
	case apperr.KindInternal, apperr.KindPersistenceFailed:
		return status, "Internal server error"
	case apperr.KindImageProcessingFailed:
		return status, "Image processing failed"
	case apperr.KindPublishFailed:
		return status, "Image upload failed: " + apperr.Message(err)
	default:
		return status, apperr.Message(err)
	}
}

// ErrorHandler is the fiber.Config ErrorHandler for errors handlers return
// instead of writing themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Error(c, err)
}
