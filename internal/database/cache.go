package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// Cache key prefixes
	CacheKeyAnalytics = "hostpanel:analytics:"
	CacheKeyUserStats = "hostpanel:userstats:"
	blacklistPrefix   = "hostpanel:jwt:blacklist:"

	// Cache TTLs
	CacheTTLAnalytics = 60 * time.Second
	CacheTTLUserStats = 60 * time.Second
)

// CacheGet retrieves a value from Redis cache and unmarshals it into dest
func CacheGet(key string, dest interface{}) error {
	ctx := context.Background()
	data, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// CacheSet stores a value in Redis cache with TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

// CacheDelete removes keys from Redis cache
func CacheDelete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx := context.Background()
	return Redis.Del(ctx, keys...).Err()
}

// InvalidateAnalyticsCache clears cached rollups for a user
func InvalidateAnalyticsCache(userID uint) {
	CacheDelete(
		fmt.Sprintf("%s%d:24h", CacheKeyAnalytics, userID),
		fmt.Sprintf("%s%d:7d", CacheKeyAnalytics, userID),
		fmt.Sprintf("%s%d:30d", CacheKeyAnalytics, userID),
	)
}

// BlacklistToken marks a JWT as revoked until it would have expired anyway.
// Used on logout so a stolen token cannot outlive the session.
func BlacklistToken(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx := context.Background()
	return Redis.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

// IsTokenBlacklisted reports whether a JWT has been revoked via logout
func IsTokenBlacklisted(token string) bool {
	ctx := context.Background()
	n, err := Redis.Exists(ctx, blacklistPrefix+token).Result()
	return err == nil && n > 0
}
