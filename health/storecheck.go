package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/shopassist/store"
)

// storeProbeKey is read when the underlying store has no Ping method.
// The key never needs to exist; any answer proves the store is up.
const storeProbeKey = "health_probe"

// Pinger is implemented by stores with a native connectivity check,
// such as store.RedisStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker reports whether the durable store is answering. Stores
// implementing Pinger are pinged directly; otherwise the checker issues
// a read for a probe key and treats store.ErrNotFound as a healthy
// answer.
type StoreChecker struct {
	store store.Store
}

// NewStoreChecker creates a checker for the given store.
func NewStoreChecker(s store.Store) *StoreChecker {
	return &StoreChecker{store: s}
}

var _ PingChecker = (*StoreChecker)(nil)

// Name returns "store".
func (c *StoreChecker) Name() string {
	return "store"
}

// Check reports whether the store answered.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if c.store == nil {
		return Unhealthy("store not configured", ErrCheckFailed)
	}
	if err := c.Ping(ctx); err != nil {
		return Unhealthy("store unreachable", err)
	}
	return Healthy("store answering")
}

// Ping checks connectivity without building a Result.
func (c *StoreChecker) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrCheckFailed
	}

	if p, ok := c.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrCheckFailed, err)
		}
		return nil
	}

	_, err := c.store.Get(ctx, storeProbeKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	return nil
}
