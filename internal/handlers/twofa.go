package handlers

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

type TwoFAHandler struct {
	cfg *config.Config
}

func NewTwoFAHandler(cfg *config.Config) *TwoFAHandler {
	return &TwoFAHandler{cfg: cfg}
}

// Status returns whether 2FA is enabled for the account
func (h *TwoFAHandler) Status(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"enabled": user.TwoFactorEnabled,
		},
	})
}

// Setup generates a new 2FA secret and returns a QR code. The secret is
// stored but 2FA stays disabled until Verify confirms a valid code.
func (h *TwoFAHandler) Setup(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "HostPanel",
		AccountName: user.Email,
	})
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return internalError(c, h.cfg, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return internalError(c, h.cfg, err)
	}
	qrBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("two_factor_secret", key.Secret())

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"secret":  key.Secret(),
			"qr_code": "data:image/png;base64," + qrBase64,
			"otpauth": key.URL(),
		},
	})
}

// Verify checks the submitted code and enables 2FA
func (h *TwoFAHandler) Verify(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Code == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Code is required")
	}

	var freshUser models.User
	if err := database.DB.First(&freshUser, user.ID).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	if freshUser.TwoFactorSecret == "" {
		return errorJSON(c, fiber.StatusBadRequest, "2FA not set up. Call setup first")
	}

	if !totp.Validate(req.Code, freshUser.TwoFactorSecret) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid code")
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("two_factor_enabled", true)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "2FA enabled",
	})
}

// Disable turns 2FA off after re-verifying the password
func (h *TwoFAHandler) Disable(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Password is incorrect")
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "2FA disabled",
	})
}
