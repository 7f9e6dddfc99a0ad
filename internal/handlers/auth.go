package handlers

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginAttempts  = 5
	loginBlockWindow  = 15 * time.Minute
	minPasswordLength = 8
)

// LoginAttempt tracks failed login attempts per IP
type LoginAttempt struct {
	Count     int
	LastTry   time.Time
	BlockedAt *time.Time
}

var (
	loginAttempts = make(map[string]*LoginAttempt)
	attemptsMutex sync.Mutex
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Register creates a new account on the free tier
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var fieldErrors []fiber.Map
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors = append(fieldErrors, fiber.Map{"field": "email", "message": "A valid email is required"})
	}
	if len(req.Password) < minPasswordLength {
		fieldErrors = append(fieldErrors, fiber.Map{"field": "password", "message": "Password must be at least 8 characters"})
	}
	if len(fieldErrors) > 0 {
		return validationJSON(c, fieldErrors)
	}

	var exists int64
	database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&exists)
	if exists > 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Email already in use")
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	user := models.User{
		Email:        req.Email,
		Password:     string(hashedPassword),
		FullName:     req.FullName,
		Plan:         models.PlanFree,
		StorageQuota: models.PlanFree.StorageQuota(),
		DomainQuota:  models.PlanFree.DomainQuota(),
		IsActive:     true,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	token, err := middleware.GenerateToken(&user, h.cfg)
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  user,
			"token": token,
		},
	})
}

// Login authenticates with email/password and an optional TOTP code
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ip := c.IP()
	if blocked, remaining := isIPBlocked(ip); blocked {
		return errorJSON(c, fiber.StatusTooManyRequests,
			"Too many failed attempts. Try again in "+remaining.Round(time.Minute).String())
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var user models.User
	err := database.DB.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		recordFailedAttempt(ip)
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	if !user.IsActive {
		return errorJSON(c, fiber.StatusUnauthorized, "Account is disabled")
	}

	if user.TwoFactorEnabled {
		if req.Code == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":        "Two-factor code required",
				"requires_2fa": true,
			})
		}
		if !totp.Validate(req.Code, user.TwoFactorSecret) {
			recordFailedAttempt(ip)
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid two-factor code")
		}
	}

	clearFailedAttempts(ip)

	now := time.Now()
	database.DB.Model(&user).UpdateColumn("last_login", &now)

	token, err := middleware.GenerateToken(&user, h.cfg)
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  user,
			"token": token,
		},
	})
}

// Logout revokes the current bearer token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.CurrentToken(c)
	if token != "" {
		if claims, err := middleware.ParseToken(token, h.cfg); err == nil && claims.ExpiresAt != nil {
			database.BlacklistToken(token, time.Until(claims.ExpiresAt.Time))
		}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// Me returns the authenticated account
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    middleware.CurrentUser(c),
	})
}

// ChangePassword updates the account password after re-verifying the old one
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Current password is incorrect")
	}
	if len(req.NewPassword) < minPasswordLength {
		return errorJSON(c, fiber.StatusBadRequest, "Password must be at least 8 characters")
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err := database.DB.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated",
	})
}

func isIPBlocked(ip string) (bool, time.Duration) {
	attemptsMutex.Lock()
	defer attemptsMutex.Unlock()

	attempt, exists := loginAttempts[ip]
	if !exists {
		return false, 0
	}

	if attempt.BlockedAt != nil {
		elapsed := time.Since(*attempt.BlockedAt)
		if elapsed < loginBlockWindow {
			return true, loginBlockWindow - elapsed
		}
		delete(loginAttempts, ip)
		return false, 0
	}

	if time.Since(attempt.LastTry) > loginBlockWindow {
		delete(loginAttempts, ip)
	}
	return false, 0
}

func recordFailedAttempt(ip string) {
	attemptsMutex.Lock()
	defer attemptsMutex.Unlock()

	if _, exists := loginAttempts[ip]; !exists {
		loginAttempts[ip] = &LoginAttempt{}
	}

	loginAttempts[ip].Count++
	loginAttempts[ip].LastTry = time.Now()

	if loginAttempts[ip].Count >= maxLoginAttempts {
		now := time.Now()
		loginAttempts[ip].BlockedAt = &now
	}
}

func clearFailedAttempts(ip string) {
	attemptsMutex.Lock()
	defer attemptsMutex.Unlock()
	delete(loginAttempts, ip)
}
