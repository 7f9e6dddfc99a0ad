package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/handlers"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/hostpanel/backend/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := models.AutoMigrate(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Start offsite backup service (mirrors new uploads to FTP when configured)
	backupService := services.NewOffsiteBackupService(cfg)
	backupService.Start()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HostPanel API v1.0",
		ServerHeader: "HostPanel",
		// Headroom over the per-file cap so multipart framing never trips
		// fiber's 413 before the upload handler's own size check
		BodyLimit: int(cfg.MaxUploadSize) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg)
	twoFAHandler := handlers.NewTwoFAHandler(cfg)
	userHandler := handlers.NewUserHandler(cfg)
	domainHandler := handlers.NewDomainHandler(cfg, services.RandomVerify)
	fileHandler := handlers.NewFileHandler(cfg)
	websiteHandler := handlers.NewWebsiteHandler(cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(cfg)
	apiKeyHandler := handlers.NewAPIKeyHandler(cfg)
	auditHandler := handlers.NewAuditHandler(cfg)
	healthHandler := handlers.NewHealthHandler()

	// Health check
	app.Get("/health", healthHandler.Check)

	// API routes
	api := app.Group("/api")

	// Apply rate limiting to API routes (100 requests per minute by default)
	api.Use(middleware.RateLimiter(100, 1*time.Minute))

	// Public routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(cfg), middleware.AuditLogger())

	// Auth routes
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)
	protected.Put("/auth/password", authHandler.ChangePassword)

	// 2FA routes
	protected.Get("/auth/2fa/status", twoFAHandler.Status)
	protected.Post("/auth/2fa/setup", twoFAHandler.Setup)
	protected.Post("/auth/2fa/verify", twoFAHandler.Verify)
	protected.Post("/auth/2fa/disable", twoFAHandler.Disable)

	// Account routes
	users := protected.Group("/users")
	users.Get("/stats", userHandler.Stats)
	users.Put("/me", userHandler.UpdateProfile)
	users.Put("/me/plan", userHandler.ChangePlan)
	users.Delete("/me", userHandler.DeleteAccount)

	// API key routes
	keys := protected.Group("/keys")
	keys.Get("/", apiKeyHandler.List)
	keys.Post("/", apiKeyHandler.Create)
	keys.Delete("/:id", apiKeyHandler.Delete)

	// Domain routes
	domains := protected.Group("/domains")
	domains.Get("/", domainHandler.List)
	domains.Post("/", domainHandler.Create)
	domains.Get("/:id", domainHandler.Get)
	domains.Post("/:id/verify", domainHandler.Verify)
	domains.Get("/:id/dns", domainHandler.DNSConfig)
	domains.Put("/:id", domainHandler.Update)
	domains.Delete("/:id", domainHandler.Delete)

	// File routes
	files := protected.Group("/files")
	files.Get("/", fileHandler.List)
	files.Post("/upload", fileHandler.Upload)
	files.Get("/download/:id", fileHandler.Download)
	files.Get("/stats/usage", fileHandler.UsageStats)
	files.Put("/:id", fileHandler.Update)
	files.Delete("/:id", fileHandler.Delete)

	// Website routes
	websites := protected.Group("/websites")
	websites.Get("/", websiteHandler.List)
	websites.Post("/", websiteHandler.Create)
	websites.Get("/:id", websiteHandler.Get)
	websites.Put("/:id", websiteHandler.Update)
	websites.Delete("/:id", websiteHandler.Delete)

	// Analytics routes
	monitor := protected.Group("/monitor")
	monitor.Post("/analytics/log", analyticsHandler.Log)
	monitor.Get("/analytics", analyticsHandler.Query)

	// Audit log routes
	protected.Get("/audit", auditHandler.List)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		backupService.Stop()
		app.Shutdown()
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("Starting HostPanel API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
