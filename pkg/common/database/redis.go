package database

import (
	"context"
	"fmt"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/config"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis builds a client for the analytics cache. A failed ping is logged
// but not fatal: callers treat cache errors as misses.
func NewRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, analytics cache disabled")
	} else {
		logger.Log.Info("Connected to Redis")
	}

	return client
}
