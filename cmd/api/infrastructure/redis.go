package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-management-service/internal/config"
	redisclient "user-management-service/pkg/redis"
)

// NewRedisClient connects to Redis when the user cache is enabled.
// It returns nil, nil when the cache is disabled.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis cache disabled")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
