package handler

import (
	"errors"

	"go-stockcredit/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps the service error taxonomy onto HTTP responses. Every
// body carries a machine-readable kind next to the human-readable message.
func respondError(c *fiber.Ctx, err error) error {
	var short *apperr.InsufficientStockError
	switch {
	case errors.As(err, &short):
		return c.Status(400).JSON(fiber.Map{
			"error":              short.Error(),
			"kind":               "InsufficientStock",
			"out_of_stock_items": short.Items,
		})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(403).JSON(fiber.Map{"error": err.Error(), "kind": "Unauthorized"})
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error(), "kind": "NotFound"})
	case errors.Is(err, apperr.ErrInvalidInput):
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "kind": "InvalidInput"})
	case errors.Is(err, apperr.ErrInvalidAmount):
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "kind": "InvalidAmount"})
	case errors.Is(err, apperr.ErrInvalidStatus):
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "kind": "InvalidStatus"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error", "kind": "InternalError"})
	}
}
