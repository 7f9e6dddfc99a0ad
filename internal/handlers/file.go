package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/middleware"
	"github.com/hostpanel/backend/internal/models"
	"github.com/hostpanel/backend/internal/quota"
	"gorm.io/gorm"
)

// Exact MIME types accepted for upload, next to the image/* and text/*
// prefixes handled in allowedMimeType.
var allowedExactMimes = map[string]bool{
	"application/pdf":  true,
	"application/json": true,
	"application/xml":  true,
	"text/xml":         true,
	"application/zip":  true,
}

// allowedMimeType reports whether a declared content type is accepted:
// images, any text, PDF, JSON, XML and ZIP.
func allowedMimeType(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if strings.HasPrefix(mime, "image/") || strings.HasPrefix(mime, "text/") {
		return true
	}
	return allowedExactMimes[mime]
}

// storedFileName builds a collision-free name: field-timestamp-random.ext.
// Randomization is what lets concurrent uploads from one user share a
// directory without coordination.
func storedFileName(field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	random := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixNano(), random, ext)
}

// canDownload reports whether requester may fetch a file: owners always,
// everyone else only when the file is public.
func canDownload(file *models.File, requester uint) bool {
	return file.UserID == requester || file.IsPublic
}

type FileHandler struct {
	cfg *config.Config
}

func NewFileHandler(cfg *config.Config) *FileHandler {
	return &FileHandler{cfg: cfg}
}

// List returns the user's files with pagination and optional name search
func (h *FileHandler) List(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 25)
	search := c.Query("search", "")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.File{}).Where("user_id = ?", userID)

	if search != "" {
		query = query.Where("original_name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var files []models.File
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&files).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
		"meta":    paginationMeta(page, limit, total),
	})
}

// Upload accepts a multipart file, writes it to the per-user directory,
// then runs the quota check. A quota rejection or a failed row insert
// removes the just-written bytes, so disk and store stay consistent.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No file uploaded")
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !allowedMimeType(mimeType) {
		return errorJSON(c, fiber.StatusBadRequest, "File type not allowed")
	}

	if fileHeader.Size > h.cfg.MaxUploadSize {
		return errorJSON(c, fiber.StatusBadRequest,
			fmt.Sprintf("File too large. Maximum size is %d MB", h.cfg.MaxUploadSize/(1024*1024)))
	}

	isPublic := c.FormValue("is_public") == "true"

	userDir := filepath.Join(h.cfg.UploadDir, fmt.Sprintf("user_%d", user.ID))
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return internalError(c, h.cfg, err)
	}

	storedName := storedFileName("file", fileHeader.Filename)
	savePath := filepath.Join(userDir, storedName)

	if err := c.SaveFile(fileHeader, savePath); err != nil {
		return internalError(c, h.cfg, err)
	}

	file := models.File{
		UserID:       user.ID,
		OriginalName: fileHeader.Filename,
		StoredName:   storedName,
		Path:         savePath,
		Size:         fileHeader.Size,
		MimeType:     mimeType,
		IsPublic:     isPublic,
	}

	if err := quota.ReserveStorage(database.DB, user.ID, &file); err != nil {
		// Bytes are already on disk; remove them before reporting failure
		if rmErr := os.Remove(savePath); rmErr != nil {
			log.Printf("upload %s: cleanup after rejected upload failed: %v", storedName, rmErr)
		}
		if errors.Is(err, quota.ErrStorageExceeded) {
			return errorJSON(c, fiber.StatusBadRequest, "Storage quota exceeded for your plan")
		}
		return internalError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"file":         file,
			"download_url": "/api/files/download/" + strconv.FormatUint(uint64(file.ID), 10),
			"public_url":   publicURL(&file, h.cfg),
		},
	})
}

// Download streams a file. Owners can always download; others only when
// the file is public. A row whose bytes are missing from disk is reported
// as not found, never repaired.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	id := c.Params("id")

	var file models.File
	if err := database.DB.First(&file, "id = ?", id).Error; err != nil {
		return errorJSON(c, fiber.StatusNotFound, "File not found")
	}

	if !canDownload(&file, userID) {
		return errorJSON(c, fiber.StatusForbidden, "Access denied")
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "File not found")
	}

	// Counted only on successful access, before the stream starts
	database.DB.Model(&file).UpdateColumn("download_count", gorm.Expr("download_count + 1"))

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.OriginalName+`"`)
	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(file.Size, 10))

	return c.SendStream(f, int(file.Size))
}

// Update patches the mutable fields of a file record
func (h *FileHandler) Update(c *fiber.Ctx) error {
	file, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "File not found")
	}

	var req struct {
		IsPublic     *bool   `json:"is_public"`
		OriginalName *string `json:"original_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.OriginalName != nil && *req.OriginalName != "" {
		updates["original_name"] = *req.OriginalName
	}

	if len(updates) > 0 {
		if err := database.DB.Model(file).Updates(updates).Error; err != nil {
			return internalError(c, h.cfg, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    file,
	})
}

// Delete removes the record and, best-effort, the disk bytes. A disk
// failure is logged but never blocks the record delete.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	file, err := h.findOwned(c)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "File not found")
	}

	if err := database.DB.Delete(file).Error; err != nil {
		return internalError(c, h.cfg, err)
	}

	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("file %d: disk delete failed, record removed anyway: %v", file.ID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted",
	})
}

// UsageStats reports the storage quota ledger for the user
func (h *FileHandler) UsageStats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	used, err := quota.StorageUsed(database.DB, user.ID)
	if err != nil {
		return internalError(c, h.cfg, err)
	}
	report := quota.Report(user.StorageQuota, used)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

func (h *FileHandler) findOwned(c *fiber.Ctx) (*models.File, error) {
	userID := middleware.CurrentUserID(c)
	id := c.Params("id")

	var file models.File
	if err := database.DB.Where("user_id = ?", userID).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func publicURL(file *models.File, cfg *config.Config) string {
	if !file.IsPublic {
		return ""
	}
	return fmt.Sprintf("https://%s/public/user_%d/%s", cfg.ExternalHost, file.UserID, file.StoredName)
}
