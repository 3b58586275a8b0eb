// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/models"

	"github.com/redis/go-redis/v9"
)

const leaderboardCacheKey = "leaderboard:snapshot"

// Cache holds the ranked leaderboard snapshot in Redis. A miss is never an
// error for callers; they recompute and write back.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

// GetLeaderboard returns the cached snapshot and whether it was present.
// Unreadable payloads count as a miss so a bad write cannot wedge reads.
func (c *Cache) GetLeaderboard(ctx context.Context) ([]models.ScoredLeader, bool) {
	raw, err := c.client.Get(ctx, leaderboardCacheKey).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("leaderboard cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}

	var entries []models.ScoredLeader
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn("leaderboard cache payload unreadable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return entries, true
}

func (c *Cache) SetLeaderboard(ctx context.Context, entries []models.ScoredLeader) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardCacheKey, payload, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardCacheKey).Err()
}
