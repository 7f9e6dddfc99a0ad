package handlers

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/hostpanel/backend/internal/quota"
	"github.com/hostpanel/backend/internal/services"
)

var fqdnPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

type DomainHandler struct {
	cfg    *config.Config
	verify services.VerifyFunc
}

func NewDomainHandler(cfg *config.Config, verify services.VerifyFunc) *DomainHandler {
	return &DomainHandler{cfg: cfg, verify: verify}
}

// List returns the user's domains
func (h *DomainHandler) List(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var domains []models.Domain
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&domains).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    domains,
	})
}

// Create registers a domain in pending state and returns the CNAMEs the
// customer must configure
func (h *DomainHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		DomainName string `json:"domain_name"`
		AutoRenew  *bool  `json:"auto_renew"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	name := strings.TrimSpace(req.DomainName)
	if !fqdnPattern.MatchString(name) {
		return errorJSON(c, fiber.StatusBadRequest, "A valid fully-qualified domain name is required")
	}

	count, err := quota.DomainCount(database.DB, user.ID)
	if err != nil {
		return internalError(c, h.cfg, err)
	}
	if count >= int64(user.DomainQuota) {
		return errorJSON(c, fiber.StatusBadRequest, "Domain quota exceeded for your plan")
	}

	// Name uniqueness is store-wide, not per-user
	var exists int64
	database.DB.Model(&models.Domain{}).Where("name = ?", name).Count(&exists)
	if exists > 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Domain is already registered")
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	records := models.BuildDNSRecords(name, h.cfg.ExternalHost, token)
	recordsJSON, _ := json.Marshal(records)

	domain := models.Domain{
		UserID:            user.ID,
		Name:              name,
		Status:            models.DomainStatusPending,
		SSLStatus:         models.SSLStatusPending,
		VerificationToken: token,
		DNSRecords:        recordsJSON,
		AutoRenew:         autoRenew,
	}

	if err := quota.ReserveDomain(database.DB, user.ID, &domain); err != nil {
		if errors.Is(err, quota.ErrDomainExceeded) {
			return errorJSON(c, fiber.StatusBadRequest, "Domain quota exceeded for your plan")
		}
		// Unique index backstops the pre-check under concurrent registration
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return errorJSON(c, fiber.StatusBadRequest, "Domain is already registered")
		}
		return internalError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"domain":      domain,
			"dns_records": records,
		},
	})
}

// Get returns a single domain
func (h *DomainHandler) Get(c *fiber.Ctx) error {
	domain, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Domain not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    domain,
	})
}

// Verify runs the verification predicate. Success flips status and
// ssl_status to active in one update; failure leaves the row untouched and
// echoes the required DNS records.
func (h *DomainHandler) Verify(c *fiber.Ctx) error {
	domain, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Domain not found")
	}

	if !h.verify(domain) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":       "Domain verification failed. Check your DNS records and try again",
			"dns_records": json.RawMessage(domain.DNSRecords),
		})
	}

	now := time.Now()
	if err := database.DB.Model(domain).Updates(map[string]interface{}{
		"status":        models.DomainStatusActive,
		"ssl_status":    models.SSLStatusActive,
		"last_verified": &now,
	}).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    domain,
	})
}

// DNSConfig returns the CNAME instructions for a domain
func (h *DomainHandler) DNSConfig(c *fiber.Ctx) error {
	domain, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Domain not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"domain":      domain.Name,
			"status":      domain.Status,
			"dns_records": json.RawMessage(domain.DNSRecords),
		},
	})
}

// Update patches the mutable fields of a domain. auto_renew is the only
// updatable column; status transitions happen exclusively through Verify.
func (h *DomainHandler) Update(c *fiber.Ctx) error {
	domain, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Domain not found")
	}

	var req struct {
		AutoRenew *bool `json:"auto_renew"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.AutoRenew != nil {
		updates["auto_renew"] = *req.AutoRenew
	}

	if len(updates) > 0 {
		if err := database.DB.Model(domain).Updates(updates).Error; err != nil {
			return internalError(c, h.cfg, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    domain,
	})
}

// Delete removes a domain
func (h *DomainHandler) Delete(c *fiber.Ctx) error {
	domain, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "Domain not found")
	}

	if err := database.DB.Delete(domain).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Domain deleted",
	})
}

func (h *DomainHandler) findOwned(c *fiber.Ctx) (*models.Domain, error) {
	userID := middleware.CurrentUserID(c)
	id := c.Params("id")

	var domain models.Domain
	if err := database.DB.Where("user_id = ?", userID).First(&domain, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &domain, nil
}
