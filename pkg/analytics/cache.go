package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Cache keeps computed overviews in Redis so dashboard polling does not
// re-scan the attempt history every few seconds. A nil client disables
// caching entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func overviewKey(days int) string {
	return fmt.Sprintf("analytics:overview:%dd", days)
}

func (c *Cache) GetOverview(ctx context.Context, days int) (models.Overview, bool) {
	if c == nil || c.client == nil {
		return models.Overview{}, false
	}
	raw, err := c.client.Get(ctx, overviewKey(days)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithError(err).Debug("overview cache read failed")
		}
		return models.Overview{}, false
	}
	var overview models.Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		return models.Overview{}, false
	}
	return overview, true
}

func (c *Cache) SetOverview(ctx context.Context, days int, overview models.Overview) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, overviewKey(days), raw, c.ttl).Err(); err != nil {
		logger.WithError(err).Debug("overview cache write failed")
	}
}

// Invalidate drops the cached overview for every window. Called after jobs
// that change the underlying data.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "analytics:overview:*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.WithError(err).Debug("overview cache invalidation failed")
	}
}
