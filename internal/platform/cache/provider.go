package cache

import (
	"context"
	"time"

	"property_connect_backend/internal/config"

	"go.uber.org/zap"
)

// New returns a Redis cache when REDIS_URL is set and an in-process cache otherwise.
func New(cfg *config.Config, logger *zap.Logger) (Cache, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process cache")
		return NewMemory(5 * time.Minute), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return NewRedis(ctx, cfg.RedisURL, logger.Named("redis"))
}
