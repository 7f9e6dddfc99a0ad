package handlers

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/hostpanel/backend/internal/quota"
	"gorm.io/gorm"
)

type UserHandler struct {
	cfg *config.Config
}

func NewUserHandler(cfg *config.Config) *UserHandler {
	return &UserHandler{cfg: cfg}
}

// UpdateProfile patches the mutable profile fields
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		FullName *string `json:"full_name"`
		Email    *string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return errorJSON(c, fiber.StatusBadRequest, "A valid email is required")
		}
		if email != user.Email {
			var exists int64
			database.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&exists)
			if exists > 0 {
				return errorJSON(c, fiber.StatusBadRequest, "Email already in use")
			}
			updates["email"] = email
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(user).Updates(updates).Error; err != nil {
			return internalError(c, h.cfg, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// ChangePlan moves the account to a new tier and resets both quotas to
// the tier's ceilings. Payment is out of scope; the plan change itself is
// immediate.
func (h *UserHandler) ChangePlan(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Plan models.PlanTier `json:"plan"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Plan < models.PlanFree || req.Plan > models.PlanEnterprise {
		return errorJSON(c, fiber.StatusBadRequest, "Unknown plan")
	}

	if err := database.DB.Model(user).Updates(map[string]interface{}{
		"plan":          req.Plan,
		"storage_quota": req.Plan.StorageQuota(),
		"domain_quota":  req.Plan.DomainQuota(),
	}).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// DeleteAccount removes the user and cascades to every owned row. Disk
// bytes are removed best-effort after the rows are gone.
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.AnalyticsEvent{},
			&models.AuditLog{},
			&models.APIKey{},
			&models.Website{},
			&models.File{},
			&models.Domain{},
		} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(user).Error
	})
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	userDir := filepath.Join(h.cfg.UploadDir, fmt.Sprintf("user_%d", user.ID))
	if err := os.RemoveAll(userDir); err != nil {
		log.Printf("user %d: upload directory cleanup failed: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account deleted",
	})
}

type accountStats struct {
	Storage quota.Usage `json:"storage"`
	Domains struct {
		Quota   int   `json:"quota"`
		Total   int64 `json:"total"`
		Active  int64 `json:"active"`
		Pending int64 `json:"pending"`
	} `json:"domains"`
	Files struct {
		Total     int64 `json:"total"`
		Public    int64 `json:"public"`
		Downloads int64 `json:"downloads"`
	} `json:"files"`
	Websites    int64 `json:"websites"`
	EventsToday int64 `json:"events_today"`
}

// Stats summarizes storage, domains and recent activity for the account.
// Briefly cached since dashboards poll it alongside analytics.
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	cacheKey := fmt.Sprintf("%s%d", database.CacheKeyUserStats, user.ID)
	var cached accountStats
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    cached,
		})
	}

	used, err := quota.StorageUsed(database.DB, user.ID)
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	var stats accountStats
	stats.Storage = quota.Report(user.StorageQuota, used)

	stats.Domains.Quota = user.DomainQuota
	database.DB.Model(&models.Domain{}).Where("user_id = ?", user.ID).Count(&stats.Domains.Total)
	database.DB.Model(&models.Domain{}).Where("user_id = ? AND status = ?", user.ID, models.DomainStatusActive).Count(&stats.Domains.Active)
	database.DB.Model(&models.Domain{}).Where("user_id = ? AND status = ?", user.ID, models.DomainStatusPending).Count(&stats.Domains.Pending)

	database.DB.Model(&models.File{}).Where("user_id = ?", user.ID).Count(&stats.Files.Total)
	database.DB.Model(&models.File{}).Where("user_id = ? AND is_public = ?", user.ID, true).Count(&stats.Files.Public)
	database.DB.Model(&models.File{}).Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(download_count), 0)").Scan(&stats.Files.Downloads)

	database.DB.Model(&models.Website{}).Where("user_id = ?", user.ID).Count(&stats.Websites)

	today := time.Now().Truncate(24 * time.Hour)
	database.DB.Model(&models.AnalyticsEvent{}).
		Where("user_id = ? AND created_at >= ?", user.ID, today).Count(&stats.EventsToday)

	database.CacheSet(cacheKey, stats, database.CacheTTLUserStats)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
