package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/models"
)

// AuditLogger records successful modifying requests to the audit log
func AuditLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := c.Method()
		if method == "GET" || method == "HEAD" || method == "OPTIONS" {
			return c.Next()
		}

		// Auth and analytics ingest are noise, not admin actions
		path := c.Path()
		skipPaths := []string{"/api/auth/", "/api/monitor/analytics/log", "/health"}
		skip := false
		for _, s := range skipPaths {
			if strings.HasPrefix(path, s) {
				skip = true
				break
			}
		}
		if skip {
			return c.Next()
		}

		user := CurrentUser(c)
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		var requestBody []byte
		if method == "POST" || method == "PUT" || method == "PATCH" {
			requestBody = c.Body()
		}

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 400 && user != nil {
			logAuditEntry(user, method, path, ip, userAgent, requestBody)
		}

		return err
	}
}

func logAuditEntry(user *models.User, method, path, ip, userAgent string, requestBody []byte) {
	var action models.AuditAction
	switch method {
	case "POST":
		action = models.AuditActionCreate
	case "PUT", "PATCH":
		action = models.AuditActionUpdate
	case "DELETE":
		action = models.AuditActionDelete
	default:
		return
	}

	entry := models.AuditLog{
		UserID:    user.ID,
		Email:     user.Email,
		Action:    action,
		Path:      path,
		Entity:    entityFromPath(path, requestBody),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	database.DB.Create(&entry)
}

// entityFromPath derives a readable entity label from the route and,
// for creates, the name carried in the request body
func entityFromPath(path string, requestBody []byte) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}
	entity := strings.TrimSuffix(segments[0], "s")

	if name := nameFromRequestBody(requestBody); name != "" {
		return entity + " \"" + name + "\""
	}
	return entity
}

func nameFromRequestBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	for _, field := range []string{"name", "domain_name", "original_name", "subdomain"} {
		if val, ok := data[field].(string); ok && val != "" {
			return val
		}
	}
	return ""
}
