package middlewares

import (
	"errors"
	"log"

	"lotes-backend/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// Ledger failures map to actionable statuses here so handlers can return
// them unwrapped.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Typed ledger failures
	switch {
	case errors.Is(err, ledger.ErrLotUnavailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "el lote no está disponible para compra"})
	case errors.Is(err, ledger.ErrPurchaseSettled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "esta compra ya está completamente pagada"})
	case errors.Is(err, ledger.ErrPurchaseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "compra no encontrada"})
	}

	// 2) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 3) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 4) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
