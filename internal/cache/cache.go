// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-review-console/internal/common/config"
	"loan-review-console/internal/common/logger"
)

// ListCache keeps normalized listing payloads in Redis for a short window.
// Every failure degrades to a miss; the backend stays the source of truth.
type ListCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	logger  logger.Logger
}

func NewListCache(client *redis.Client, cfg config.CacheConfig, log logger.Logger) *ListCache {
	return &ListCache{
		client:  client,
		ttl:     time.Duration(cfg.TTLSeconds) * time.Second,
		enabled: cfg.Enabled && client != nil,
		logger:  log,
	}
}

// Get unmarshals the cached value into dest. The boolean reports a hit.
func (c *ListCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Debug("Cache entry unreadable, treating as miss", map[string]interface{}{"key": key})
		return false
	}
	return true
}

// Set stores value under key for the configured TTL.
func (c *ListCache) Set(ctx context.Context, key string, value interface{}) {
	if !c.enabled {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("Cache value not serializable", map[string]interface{}{"key": key})
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
