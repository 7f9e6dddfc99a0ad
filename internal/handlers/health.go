package handlers

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/database"
)

var startTime = time.Now()

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check reports process health. It is unauthenticated so load balancers
// and uptime monitors can poll it.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK

	dbStatus := "up"
	if err := database.Ping(); err != nil {
		dbStatus = "down"
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	redisStatus := "up"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := database.Redis.Ping(ctx).Result(); err != nil {
		redisStatus = "down"
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": dbStatus,
		"redis":    redisStatus,
		"uptime":   formatUptime(time.Since(startTime)),
		"memory": fiber.Map{
			"alloc_mb": mem.Alloc / 1024 / 1024,
			"sys_mb":   mem.Sys / 1024 / 1024,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
