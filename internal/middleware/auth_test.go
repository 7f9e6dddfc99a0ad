package middleware

import (
	"testing"

	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-key-at-least-32-bytes-long",
		JWTExpireHours: 24,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	user := &models.User{
		ID:    42,
		Email: "owner@example.com",
		Plan:  models.PlanPro,
	}

	token, err := GenerateToken(user, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, models.PlanPro, claims.Plan)
	assert.Equal(t, "hostpanel", claims.Issuer)
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	user := &models.User{ID: 1, Email: "a@b.c", Plan: models.PlanFree}

	token, err := GenerateToken(user, cfg)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig()
		other.JWTSecret = "a-completely-different-signing-secret"
		_, err := ParseToken(token, other)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseToken("not.a.token", cfg)
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		_, err := ParseToken(token+"x", cfg)
		assert.Error(t, err)
	})
}
