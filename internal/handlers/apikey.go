package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
)

const maxAPIKeysPerUser = 10

type APIKeyHandler struct {
	cfg *config.Config
}

func NewAPIKeyHandler(cfg *config.Config) *APIKeyHandler {
	return &APIKeyHandler{cfg: cfg}
}

func (h *APIKeyHandler) List(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var keys []models.APIKey
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&keys).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    keys,
	})
}

func (h *APIKeyHandler) Create(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Key name is required")
	}

	var count int64
	database.DB.Model(&models.APIKey{}).Where("user_id = ?", userID).Count(&count)
	if count >= maxAPIKeysPerUser {
		return errorJSON(c, fiber.StatusBadRequest, "API key limit reached")
	}

	key, err := generateAPIKey()
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	apiKey := models.APIKey{
		UserID: userID,
		Name:   req.Name,
		Key:    key,
	}
	if err := database.DB.Create(&apiKey).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    apiKey,
	})
}

func (h *APIKeyHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id := c.Params("id")

	result := database.DB.Where("user_id = ? AND id = ?", userID, id).Delete(&models.APIKey{})
	if result.Error != nil {
		return internalError(c, h.cfg, result.Error)
	}
	if result.RowsAffected == 0 {
		return errorJSON(c, fiber.StatusNotFound, "API key not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "API key deleted",
	})
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "hp_" + hex.EncodeToString(buf), nil
}
