package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FieldCache stores described CRM field lists for a while.
type FieldCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, fields []string)
}

type memoryEntry struct {
	fields    []string
	expiresAt time.Time
}

// MemoryFieldCache is a process-local FieldCache with a fixed TTL.
type MemoryFieldCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryFieldCache creates a cache whose entries live for ttl
func NewMemoryFieldCache(ttl time.Duration) *MemoryFieldCache {
	return &MemoryFieldCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns a copy of the cached fields
func (c *MemoryFieldCache) Get(_ context.Context, key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return append([]string(nil), e.fields...), true
}

// Set stores a copy of fields
func (c *MemoryFieldCache) Set(_ context.Context, key string, fields []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		fields:    append([]string(nil), fields...),
		expiresAt: c.now().Add(c.ttl),
	}
}

// RedisFieldCache shares described field lists between API instances.
// Redis errors degrade to cache misses.
type RedisFieldCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisFieldCache creates a Redis-backed FieldCache
func NewRedisFieldCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisFieldCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFieldCache{client: client, prefix: "crm:describe:", ttl: ttl, logger: logger}
}

// Get returns the cached fields
func (c *RedisFieldCache) Get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Field cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// Set stores fields with the cache TTL
func (c *RedisFieldCache) Set(ctx context.Context, key string, fields []string) {
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Field cache write failed", zap.String("key", key), zap.Error(err))
	}
}
