package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
)

type AnalyticsHandler struct {
	cfg *config.Config
}

func NewAnalyticsHandler(cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{cfg: cfg}
}

// Log ingests one event. Only event_type is required; client metadata is
// captured from the request. Ingestion is best-effort: store failures are
// logged, the caller still gets a 200.
func (h *AnalyticsHandler) Log(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var req struct {
		EventType string          `json:"event_type"`
		EventData json.RawMessage `json:"event_data"`
		WebsiteID *uint           `json:"website_id"`
		DomainID  *uint           `json:"domain_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.EventType == "" {
		return errorJSON(c, fiber.StatusBadRequest, "event_type is required")
	}

	event := models.AnalyticsEvent{
		UserID:    userID,
		WebsiteID: req.WebsiteID,
		DomainID:  req.DomainID,
		EventType: req.EventType,
		EventData: req.EventData,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		Referrer:  c.Get("Referer"),
	}

	if err := database.DB.Create(&event).Error; err != nil {
		log.Printf("analytics: event insert failed for user %d: %v", userID, err)
	} else {
		database.InvalidateAnalyticsCache(userID)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Query returns time-bucketed rollups for a period. Results are cached
// briefly in Redis since dashboards poll this endpoint.
func (h *AnalyticsHandler) Query(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	period := c.Query("period", "24h")
	var window time.Duration
	switch period {
	case "24h":
		window = 24 * time.Hour
	case "7d":
		window = 7 * 24 * time.Hour
	case "30d":
		window = 30 * 24 * time.Hour
	default:
		return errorJSON(c, fiber.StatusBadRequest, "period must be one of 24h, 7d, 30d")
	}

	cacheKey := fmt.Sprintf("%s%d:%s", database.CacheKeyAnalytics, userID, period)
	var cached Rollup
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    cached,
		})
	}

	since := time.Now().Add(-window)

	var events []models.AnalyticsEvent
	if err := database.DB.
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at").
		Find(&events).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	rollup := buildRollup(events, period)
	database.CacheSet(cacheKey, rollup, database.CacheTTLAnalytics)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rollup,
	})
}
