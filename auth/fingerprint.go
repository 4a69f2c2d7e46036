package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jonwraymond/shopassist/observe"
	"github.com/jonwraymond/shopassist/store"
)

// DefaultFingerprintKey is the durable-store key for the guest
// fingerprint.
const DefaultFingerprintKey = "guest_fingerprint"

// FingerprintConfig configures a FingerprintProvider.
type FingerprintConfig struct {
	// StoreKey is the durable-store key for the fingerprint.
	// Default: DefaultFingerprintKey
	StoreKey string

	// Logger receives storage-failure diagnostics. Defaults to a no-op.
	Logger observe.Logger

	// NewID generates a fresh fingerprint. Defaults to uuid.NewString.
	NewID func() string
}

// FingerprintProvider supplies the stable anonymous identity sent with
// guest requests. The value is created once, persisted, and reused; if
// persistence fails the generated value still stays stable for the
// lifetime of the provider.
type FingerprintProvider struct {
	mu      sync.Mutex
	store   store.Store
	key     string
	current string
	logger  observe.Logger
	newID   func() string
}

// NewFingerprintProvider creates a FingerprintProvider over the given
// store.
func NewFingerprintProvider(s store.Store, cfg FingerprintConfig) (*FingerprintProvider, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = DefaultFingerprintKey
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	return &FingerprintProvider{
		store:  s,
		key:    cfg.StoreKey,
		logger: cfg.Logger.WithComponent("auth"),
		newID:  cfg.NewID,
	}, nil
}

// Fingerprint returns the guest fingerprint, creating and persisting
// one on first use.
func (p *FingerprintProvider) Fingerprint(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != "" {
		return p.current
	}

	value, err := p.store.Get(ctx, p.key)
	if err == nil && value != "" {
		p.current = value
		return value
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Warn(ctx, "fingerprint read failed",
			observe.Field{Key: "error", Value: err.Error()})
	}

	p.current = p.newID()
	if err := p.store.Set(ctx, p.key, p.current); err != nil {
		p.logger.Error(ctx, "fingerprint write failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
	return p.current
}
