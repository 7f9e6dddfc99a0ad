package handlers

import (
	"regexp"
	"strings"
	"testing"

	"github.com/hostpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAllowedMimeType(t *testing.T) {
	t.Parallel()

	allowed := []string{
		"image/png",
		"image/svg+xml",
		"text/plain",
		"text/html; charset=utf-8",
		"application/pdf",
		"application/json",
		"application/xml",
		"text/xml",
		"application/zip",
		"  Application/PDF  ",
	}
	for _, mime := range allowed {
		assert.True(t, allowedMimeType(mime), "expected %q to be allowed", mime)
	}

	rejected := []string{
		"application/octet-stream",
		"application/x-msdownload",
		"video/mp4",
		"audio/mpeg",
		"",
	}
	for _, mime := range rejected {
		assert.False(t, allowedMimeType(mime), "expected %q to be rejected", mime)
	}
}

func TestStoredFileName(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^file-\d+-[0-9a-f]{8}\.png$`)

	name := storedFileName("file", "Holiday Photo.PNG")
	assert.True(t, pattern.MatchString(name), "unexpected name %q", name)

	// two calls never collide even for identical inputs
	other := storedFileName("file", "Holiday Photo.PNG")
	assert.NotEqual(t, name, other)

	// extensionless uploads stay extensionless
	bare := storedFileName("file", "README")
	assert.False(t, strings.Contains(bare, "."))
}

func TestCanDownload(t *testing.T) {
	t.Parallel()

	private := &models.File{UserID: 1, IsPublic: false}
	public := &models.File{UserID: 1, IsPublic: true}

	t.Run("owner downloads own private file", func(t *testing.T) {
		assert.True(t, canDownload(private, 1))
	})

	t.Run("non-owner downloads public file", func(t *testing.T) {
		assert.True(t, canDownload(public, 2))
	})

	t.Run("non-owner denied private file", func(t *testing.T) {
		assert.False(t, canDownload(private, 2))
	})

	t.Run("owner downloads own public file", func(t *testing.T) {
		assert.True(t, canDownload(public, 1))
	})
}
