package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
)

// Failure bodies always carry an "error" field; multi-field validation
// failures add a structured "errors" array.

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func validationJSON(c *fiber.Ctx, fieldErrors []fiber.Map) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"errors": fieldErrors,
	})
}

// internalError maps an unexpected store/filesystem failure to a 500. The
// underlying message is suppressed in production mode.
func internalError(c *fiber.Ctx, cfg *config.Config, err error) error {
	log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
	msg := "Internal server error"
	if cfg != nil && !cfg.IsProduction() && err != nil {
		msg = err.Error()
	}
	return errorJSON(c, fiber.StatusInternalServerError, msg)
}

func paginationMeta(page, limit int, total int64) fiber.Map {
	return fiber.Map{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	}
}
