package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

type WebsiteHandler struct {
	cfg *config.Config
}

func NewWebsiteHandler(cfg *config.Config) *WebsiteHandler {
	return &WebsiteHandler{cfg: cfg}
}

func (h *WebsiteHandler) List(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var sites []models.Website
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&sites).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    sites,
	})
}

func (h *WebsiteHandler) Create(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		Name      string `json:"name"`
		Subdomain string `json:"subdomain"`
		DomainID  *uint  `json:"domain_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Subdomain = strings.TrimSpace(strings.ToLower(req.Subdomain))
	if req.Name == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Site name is required")
	}
	if !subdomainPattern.MatchString(req.Subdomain) {
		return errorJSON(c, fiber.StatusBadRequest, "Subdomain must be lowercase letters, digits and hyphens")
	}

	var exists int64
	database.DB.Model(&models.Website{}).Where("subdomain = ?", req.Subdomain).Count(&exists)
	if exists > 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Subdomain already taken")
	}

	// A linked custom domain must be one of the caller's own
	if req.DomainID != nil {
		var owned int64
		database.DB.Model(&models.Domain{}).
			Where("user_id = ? AND id = ?", userID, *req.DomainID).Count(&owned)
		if owned == 0 {
			return errorJSON(c, fiber.StatusBadRequest, "Unknown domain")
		}
	}

	site := models.Website{
		UserID:    userID,
		Name:      req.Name,
		Subdomain: req.Subdomain,
		DomainID:  req.DomainID,
		Status:    "active",
	}
	if err := database.DB.Create(&site).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return errorJSON(c, fiber.StatusBadRequest, "Subdomain already taken")
		}
		return internalError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    site,
	})
}

func (h *WebsiteHandler) Get(c *fiber.Ctx) error {
	site, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Website not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    site,
	})
}

func (h *WebsiteHandler) Update(c *fiber.Ctx) error {
	site, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Website not found")
	}

	var req struct {
		Name     *string `json:"name"`
		Status   *string `json:"status"`
		DomainID *uint   `json:"domain_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errorJSON(c, fiber.StatusBadRequest, "Site name is required")
		}
		updates["name"] = name
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "suspended" {
			return errorJSON(c, fiber.StatusBadRequest, "Status must be active or suspended")
		}
		updates["status"] = *req.Status
	}
	if req.DomainID != nil {
		var owned int64
		database.DB.Model(&models.Domain{}).
			Where("user_id = ? AND id = ?", site.UserID, *req.DomainID).Count(&owned)
		if owned == 0 {
			return errorJSON(c, fiber.StatusBadRequest, "Unknown domain")
		}
		updates["domain_id"] = *req.DomainID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(site).Updates(updates).Error; err != nil {
			return internalError(c, h.cfg, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    site,
	})
}

func (h *WebsiteHandler) Delete(c *fiber.Ctx) error {
	site, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Website not found")
	}

	if err := database.DB.Delete(site).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Website deleted",
	})
}

func (h *WebsiteHandler) findOwned(c *fiber.Ctx) (*models.Website, error) {
	userID := middleware.CurrentUserID(c)
	id := c.Params("id")

	var site models.Website
	if err := database.DB.Where("user_id = ?", userID).First(&site, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}
