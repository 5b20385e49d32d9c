// Package cache distributes mapping change notifications and caches
// described CRM field lists.
package cache

import (
	"context"
	"sync"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"go.uber.org/zap"
)

// ChangeHandler receives mapping changes.
type ChangeHandler = func(change appintegration.MappingChange)

// LocalChangeBus fans mapping changes out to in-process subscribers.
// It implements appintegration.ChangeNotifier.
type LocalChangeBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]ChangeHandler
	logger *zap.Logger
}

// NewLocalChangeBus creates an empty bus
func NewLocalChangeBus(logger *zap.Logger) *LocalChangeBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalChangeBus{subs: make(map[int]ChangeHandler), logger: logger}
}

// Publish delivers change to every subscriber synchronously.
func (b *LocalChangeBus) Publish(_ context.Context, change appintegration.MappingChange) error {
	b.Deliver(change)
	return nil
}

// Deliver invokes each subscriber. A panicking subscriber does not stop
// delivery to the others.
func (b *LocalChangeBus) Deliver(change appintegration.MappingChange) {
	b.mu.RLock()
	handlers := make([]ChangeHandler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, change)
	}
}

func (b *LocalChangeBus) invoke(h ChangeHandler, change appintegration.MappingChange) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in mapping change subscriber", zap.Any("panic", r))
		}
	}()
	h(change)
}

// Subscribe registers h and returns a function that removes it.
func (b *LocalChangeBus) Subscribe(h ChangeHandler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Subscribers returns the current subscriber count
func (b *LocalChangeBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
