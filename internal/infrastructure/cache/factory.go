package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Components bundles what the server needs from this package.
type Components struct {
	Local      *LocalChangeBus
	Redis      *RedisChangeBus // nil without Redis
	FieldCache FieldCache
	client     *redis.Client
}

// Close releases the Redis client, if any
func (c *Components) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Build wires the change bus and field cache. With Redis disabled or
// unreachable it falls back to process-local implementations.
func Build(ctx context.Context, redisCfg config.RedisConfig, fieldTTL time.Duration, logger *zap.Logger) *Components {
	local := NewLocalChangeBus(logger)
	c := &Components{Local: local, FieldCache: NewMemoryFieldCache(fieldTTL)}
	if !redisCfg.Enabled {
		logger.Info("Redis disabled, using in-memory change bus")
		return c
	}
	client, err := NewRedisClient(ctx, redisCfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory change bus", zap.Error(err))
		return c
	}
	c.client = client
	c.Redis = NewRedisChangeBus(client, redisCfg.Channel, local, logger)
	c.FieldCache = NewRedisFieldCache(client, fieldTTL, logger)
	return c
}
