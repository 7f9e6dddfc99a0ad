package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
)

type AuditHandler struct {
	cfg *config.Config
}

func NewAuditHandler(cfg *config.Config) *AuditHandler {
	return &AuditHandler{cfg: cfg}
}

// List returns the caller's own audit trail, newest first
func (h *AuditHandler) List(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := database.DB.Model(&models.AuditLog{}).Where("user_id = ?", userID)
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	query.Count(&total)

	var entries []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&entries).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"meta":    paginationMeta(page, limit, total),
	})
}
