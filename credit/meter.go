package credit

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/shopassist/observe"
	"github.com/jonwraymond/shopassist/store"
)

const (
	// DefaultMaxActions is the guest allowance applied when none is
	// configured.
	DefaultMaxActions = 10

	// MaxHistoryEntries caps the persisted action history. When full,
	// the oldest record is dropped.
	MaxHistoryEntries = 50

	// DefaultCountKey is the durable-store key for the consumed count.
	DefaultCountKey = "guest_action_count"

	// DefaultHistoryKey is the durable-store key for the action history.
	DefaultHistoryKey = "guest_action_history"
)

// ActionRecord is one consumed action in the history.
type ActionRecord struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Config configures a Meter.
type Config struct {
	// MaxActions is the guest allowance.
	// Default: DefaultMaxActions
	MaxActions int

	// CountKey is the durable-store key for the consumed count.
	// Default: DefaultCountKey
	CountKey string

	// HistoryKey is the durable-store key for the action history.
	// Default: DefaultHistoryKey
	HistoryKey string

	// Logger receives storage-failure diagnostics. Defaults to a no-op.
	Logger observe.Logger

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
}

// Meter tracks how many actions a guest has consumed against a fixed
// allowance. The count is the source of truth for limit math; the
// history records what was consumed and when, for display only.
//
// Contract:
// - Concurrency: safe for concurrent use; a mutex serializes the increment cycle.
// - Context: storage calls receive the caller's context.
// - Errors: storage failures are logged, never returned. Reads fall back
//   to the zero state (count 0, empty history); writes are best-effort.
type Meter struct {
	mu         sync.Mutex
	store      store.Store
	countKey   string
	historyKey string
	maxActions int
	logger     observe.Logger
	now        func() time.Time
}

// NewMeter creates a Meter over the given store.
func NewMeter(s store.Store, cfg Config) (*Meter, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = DefaultMaxActions
	}
	if cfg.CountKey == "" {
		cfg.CountKey = DefaultCountKey
	}
	if cfg.HistoryKey == "" {
		cfg.HistoryKey = DefaultHistoryKey
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Meter{
		store:      s,
		countKey:   cfg.CountKey,
		historyKey: cfg.HistoryKey,
		maxActions: cfg.MaxActions,
		logger:     cfg.Logger.WithComponent("credit"),
		now:        cfg.Now,
	}, nil
}

// TrackAction consumes one action of the given type. It returns false
// without mutating anything when the allowance is already exhausted.
func (m *Meter) TrackAction(ctx context.Context, actionType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := m.loadCount(ctx)
	if m.remainingFor(count) == 0 {
		return false
	}

	history := m.loadHistory(ctx)
	history = append(history, ActionRecord{Type: actionType, Timestamp: m.now()})
	if len(history) > MaxHistoryEntries {
		history = history[len(history)-MaxHistoryEntries:]
	}

	m.persistCount(ctx, count+1)
	m.persistHistory(ctx, history)
	return true
}

// Remaining reports how many actions are left. It reads the durable
// count fresh on every call and never goes negative.
func (m *Meter) Remaining(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingFor(m.loadCount(ctx))
}

// IsLimitReached reports whether the allowance is exhausted.
func (m *Meter) IsLimitReached(ctx context.Context) bool {
	return m.Remaining(ctx) == 0
}

// Reset clears the count and the history from persistence.
func (m *Meter) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, m.countKey); err != nil {
		m.logger.Error(ctx, "action count reset failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
	if err := m.store.Delete(ctx, m.historyKey); err != nil {
		m.logger.Error(ctx, "action history reset failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

// MaxActions returns the fixed allowance.
func (m *Meter) MaxActions() int {
	return m.maxActions
}

// History returns a copy of the persisted action history, oldest first.
func (m *Meter) History(ctx context.Context) []ActionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.loadHistory(ctx)
	if len(history) == 0 {
		return nil
	}
	out := make([]ActionRecord, len(history))
	copy(out, history)
	return out
}

func (m *Meter) remainingFor(count int) int {
	remaining := m.maxActions - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// loadCount reads the durable count. Missing and corrupt values both
// read as zero.
func (m *Meter) loadCount(ctx context.Context) int {
	raw, err := m.store.Get(ctx, m.countKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn(ctx, "action count read failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
		return 0
	}

	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		m.logger.Warn(ctx, "action count corrupt, treating as zero",
			observe.Field{Key: "value", Value: raw})
		return 0
	}
	return count
}

// loadHistory reads the durable history. Missing and corrupt blobs both
// read as empty.
func (m *Meter) loadHistory(ctx context.Context) []ActionRecord {
	raw, err := m.store.Get(ctx, m.historyKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn(ctx, "action history read failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
		return nil
	}

	var history []ActionRecord
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		m.logger.Warn(ctx, "action history corrupt, treating as empty",
			observe.Field{Key: "error", Value: err.Error()})
		return nil
	}
	return history
}

func (m *Meter) persistCount(ctx context.Context, count int) {
	if err := m.store.Set(ctx, m.countKey, strconv.Itoa(count)); err != nil {
		m.logger.Error(ctx, "action count write failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}

func (m *Meter) persistHistory(ctx context.Context, history []ActionRecord) {
	data, err := json.Marshal(history)
	if err != nil {
		m.logger.Error(ctx, "action history encode failed",
			observe.Field{Key: "error", Value: err.Error()})
		return
	}
	if err := m.store.Set(ctx, m.historyKey, string(data)); err != nil {
		m.logger.Error(ctx, "action history write failed",
			observe.Field{Key: "error", Value: err.Error()})
	}
}
