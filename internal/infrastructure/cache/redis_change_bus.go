package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChangeChannel is the pub/sub channel used when none is configured
const DefaultChangeChannel = "crm:mapping:changes"

// ErrAlreadyRunning is returned by Run when a subscription is active
var ErrAlreadyRunning = errors.New("cache: subscription already running")

// RedisChangeBus publishes mapping changes on a Redis channel and relays
// every change received on it, including its own, to a LocalChangeBus.
// Publish does not deliver locally; delivery happens when Redis echoes
// the message back, so every API instance sees the same stream.
type RedisChangeBus struct {
	client  *redis.Client
	channel string
	local   *LocalChangeBus
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewRedisChangeBus creates a bus over an existing client. The caller owns the client.
func NewRedisChangeBus(client *redis.Client, channel string, local *LocalChangeBus, logger *zap.Logger) *RedisChangeBus {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisChangeBus{client: client, channel: channel, local: local, logger: logger}
}

// Publish sends change to every subscribed instance
func (b *RedisChangeBus) Publish(ctx context.Context, change appintegration.MappingChange) error {
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish mapping change",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish mapping change: %w", err)
	}
	return nil
}

// Run subscribes to the channel and relays messages until ctx is done.
// ready, if non-nil, is closed once the subscription is confirmed.
func (b *RedisChangeBus) Run(ctx context.Context, ready chan<- struct{}) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return ErrAlreadyRunning
	}
	b.running = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	b.logger.Info("Subscribed to mapping change channel", zap.String("channel", b.channel))
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Mapping change channel closed")
				return nil
			}
			var change appintegration.MappingChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				b.logger.Warn("Dropping malformed mapping change", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			b.local.Deliver(change)
		}
	}
}
