package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/shopassist/chat"
	"github.com/jonwraymond/shopassist/observe"
	"github.com/jonwraymond/shopassist/store"
)

// DefaultStoreKey is the durable-store key holding the serialized map.
const DefaultStoreKey = "assistant_cache"

// DefaultValidity is the validity window applied when none is configured.
const DefaultValidity = 60 * time.Minute

// Sentinel errors for cache construction.
var (
	ErrNilStore = errors.New("cache: store is nil")
)

// Entry is one cached response with its lifecycle timestamps. The
// stored result always carries Cached=false; Get forces the flag on
// the copy it hands out.
type Entry struct {
	Key       string         `json:"key"`
	Result    *chat.Response `json:"result"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Stats summarizes cache occupancy.
type Stats struct {
	Total   int
	Valid   int
	Expired int
}

// Config configures a ResponseCache.
type Config struct {
	// Validity is how long entries stay fresh from the moment they are
	// stored. Defaults to DefaultValidity.
	Validity time.Duration

	// StoreKey is the durable-store key for the serialized map.
	// Defaults to DefaultStoreKey.
	StoreKey string

	// Logger receives storage-failure diagnostics. Defaults to a no-op.
	Logger observe.Logger

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
}

// ResponseCache is a TTL cache for assistant responses, persisted as a
// single JSON blob in a durable store.
//
// Contract:
// - Concurrency: safe for concurrent use; a mutex serializes each read-modify-write cycle.
// - Context: storage calls receive the caller's context.
// - Errors: storage and serialization failures degrade to miss/no-op and are logged, never returned.
type ResponseCache struct {
	mu       sync.Mutex
	store    store.Store
	storeKey string
	validity time.Duration
	logger   observe.Logger
	now      func() time.Time
}

// NewResponseCache creates a ResponseCache over the given store.
func NewResponseCache(s store.Store, cfg Config) (*ResponseCache, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if cfg.Validity <= 0 {
		cfg.Validity = DefaultValidity
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = DefaultStoreKey
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ResponseCache{
		store:    s,
		storeKey: cfg.StoreKey,
		validity: cfg.Validity,
		logger:   cfg.Logger.WithComponent("cache"),
		now:      cfg.Now,
	}, nil
}

// Get returns the cached response for query, or nil on miss. Reading
// an expired entry deletes it from the persisted map before reporting
// the miss. Hits return a copy with Cached forced true; the stored
// copy keeps Cached=false.
func (c *ResponseCache) Get(ctx context.Context, query string) *chat.Response {
	key := NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	entry, ok := entries[key]
	if !ok {
		return nil
	}

	if entry.Expired(c.now()) {
		delete(entries, key)
		c.persist(ctx, entries)
		return nil
	}

	resp := entry.Result.Clone()
	if resp == nil {
		return nil
	}
	resp.Cached = true
	return resp
}

// Set stores a copy of resp for query under the validity window in
// effect now, overwriting any previous entry for the same key. The
// stored copy carries Cached=false regardless of the input's flag. A
// nil response is ignored.
func (c *ResponseCache) Set(ctx context.Context, query string, resp *chat.Response) {
	if resp == nil {
		return
	}
	key := NormalizeQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := resp.Clone()
	stored.Cached = false

	now := c.now()
	entries := c.load(ctx)
	entries[key] = Entry{
		Key:       key,
		Result:    stored,
		CreatedAt: now,
		ExpiresAt: now.Add(c.validity),
	}
	c.persist(ctx, entries)
}

// ClearExpired removes every expired entry in one scan and persists at
// most once. It returns the number of entries removed.
func (c *ResponseCache) ClearExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entries := c.load(ctx)

	removed := 0
	for key, entry := range entries {
		if entry.Expired(now) {
			delete(entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.persist(ctx, entries)
	}
	return removed
}

// ClearAll removes the entire persisted blob.
func (c *ResponseCache) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.storeKey); err != nil {
		c.logger.Error(ctx, "cache clear failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// Stats reports occupancy. Unlike Get it never evicts.
func (c *ResponseCache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entries := c.load(ctx)

	s := Stats{Total: len(entries)}
	for _, entry := range entries {
		if entry.Expired(now) {
			s.Expired++
		} else {
			s.Valid++
		}
	}
	return s
}

// Configure changes the validity window used by subsequent Set calls.
// Expiry timestamps already stored are not recomputed. Non-positive
// values are ignored.
func (c *ResponseCache) Configure(validity time.Duration) {
	if validity <= 0 {
		return
	}
	c.mu.Lock()
	c.validity = validity
	c.mu.Unlock()
}

// Validity returns the window currently applied to Set calls.
func (c *ResponseCache) Validity() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validity
}

// load reads and decodes the persisted map. Missing and corrupt blobs
// both read as an empty cache.
func (c *ResponseCache) load(ctx context.Context) map[string]Entry {
	raw, err := c.store.Get(ctx, c.storeKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn(ctx, "cache read failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
		return map[string]Entry{}
	}

	entries := map[string]Entry{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn(ctx, "cache blob corrupt, treating as empty",
			observe.Field{Key: "error", Value: err.Error()})
		return map[string]Entry{}
	}
	return entries
}

// persist serializes and writes the map. Failures are logged, not returned.
func (c *ResponseCache) persist(ctx context.Context, entries map[string]Entry) {
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Error(ctx, "cache encode failed",
			observe.Field{Key: "error", Value: err.Error()})
		return
	}
	if err := c.store.Set(ctx, c.storeKey, string(data)); err != nil {
		c.logger.Error(ctx, "cache write failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}
