package assistant

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/shopassist/auth"
	"github.com/jonwraymond/shopassist/cache"
	"github.com/jonwraymond/shopassist/chat"
	"github.com/jonwraymond/shopassist/credit"
	"github.com/jonwraymond/shopassist/observe"
	"github.com/jonwraymond/shopassist/resilience"
)

// ActionQuery is the action type charged against guest credits for
// assistant queries.
const ActionQuery = "assistant_query"

// DefaultMaxTimeoutFactor caps the growing per-attempt timeout at
// this multiple of the base timeout.
const DefaultMaxTimeoutFactor = 4

// Cache is the response cache consulted before any credit is spent.
// Lookups and stores are best-effort; a degraded cache misses.
type Cache interface {
	Get(ctx context.Context, query string) *chat.Response
	Set(ctx context.Context, query string, resp *chat.Response)
}

// Gate decides whether a request may proceed and charges guest
// credits. Authenticated callers always pass without being charged.
type Gate interface {
	IsActionAllowed(ctx context.Context, actionType string) bool
	TrackAPIAction(ctx context.Context, actionType string) bool
}

var (
	_ Cache = (*cache.ResponseCache)(nil)
	_ Gate  = (*credit.Gate)(nil)
)

// Config configures a Client.
type Config struct {
	// Cache answers repeat queries without spending credit. Required.
	Cache Cache

	// Gate admits or denies requests that must reach the backend.
	// Required.
	Gate Gate

	// Querier performs the remote call. Required.
	Querier Querier

	// Session reports the authentication state for telemetry and
	// credit accounting. It should be the same collaborator the gate
	// consults. Optional; absent means every caller is a guest.
	Session auth.Session

	// Retry shapes the remote-call retry envelope. Zero values take
	// the resilience defaults; RetryIf defaults to Retryable.
	Retry resilience.RetryConfig

	// BaseTimeout is the first attempt's deadline. Later attempts get
	// BaseTimeout multiplied by the attempt number, capped at
	// MaxTimeout.
	// Default: resilience.DefaultTimeout.
	BaseTimeout time.Duration

	// MaxTimeout caps the per-attempt deadline.
	// Default: DefaultMaxTimeoutFactor times BaseTimeout.
	MaxTimeout time.Duration

	// Middleware wraps each send with tracing, metrics, and logging.
	// Optional.
	Middleware *observe.Middleware

	// Logger receives retry diagnostics.
	// Default: a no-op logger.
	Logger observe.Logger
}

// Client orchestrates query handling: cache first, gate second,
// backend last.
//
// Contract:
// - Concurrency: safe for concurrent use. Concurrent sends of the
//   same query may each reach the backend; the cache keeps the last
//   result written.
// - Context: Send honors cancellation and deadlines; cancellation
//   propagates unchanged.
// - Errors: failures are *QueryError. A denial never reaches the
//   backend and matches ErrLimitReached.
type Client struct {
	cache   Cache
	gate    Gate
	querier Querier
	session auth.Session
	retry   *resilience.Retry
	wrap    func(observe.QueryFunc) observe.QueryFunc
	logger  observe.Logger
	cfg     Config
}

// NewClient creates a Client from the given collaborators.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Cache == nil {
		return nil, ErrNilCache
	}
	if cfg.Gate == nil {
		return nil, ErrNilGate
	}
	if cfg.Querier == nil {
		return nil, ErrNilQuerier
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	logger = logger.WithComponent("assistant")

	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = resilience.DefaultTimeout
	}
	if cfg.MaxTimeout <= 0 {
		cfg.MaxTimeout = DefaultMaxTimeoutFactor * cfg.BaseTimeout
	}
	if cfg.MaxTimeout < cfg.BaseTimeout {
		cfg.MaxTimeout = cfg.BaseTimeout
	}

	rc := cfg.Retry
	if rc.RetryIf == nil {
		rc.RetryIf = Retryable
	}
	if rc.OnRetry == nil {
		rc.OnRetry = func(attempt int, err error, delay time.Duration) {
			logger.Warn(context.Background(), "query attempt failed",
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "retry_in_ms", Value: delay.Milliseconds()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	cfg.Retry = rc

	wrap := func(fn observe.QueryFunc) observe.QueryFunc { return fn }
	if cfg.Middleware != nil {
		wrap = cfg.Middleware.Wrap
	}

	return &Client{
		cache:   cfg.Cache,
		gate:    cfg.Gate,
		querier: cfg.Querier,
		session: cfg.Session,
		retry:   resilience.NewRetry(rc),
		wrap:    wrap,
		logger:  logger,
		cfg:     cfg,
	}, nil
}

// Send answers a query, from the cache when possible and from the
// backend when allowed. The returned response carries Cached=true
// only when it was served locally.
func (c *Client) Send(ctx context.Context, query string, history []chat.Message) (*chat.Response, error) {
	authenticated := c.authenticated(ctx)
	meta := observe.QueryMeta{
		Key:           cache.NormalizeQuery(query),
		Authenticated: authenticated,
	}

	var resp *chat.Response
	fn := c.wrap(func(ctx context.Context, meta observe.QueryMeta) (observe.QueryOutcome, error) {
		r, outcome, err := c.handle(ctx, query, history, meta)
		resp = r
		return outcome, err
	})

	_, err := fn(ctx, meta)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// handle runs the cache-gate-backend sequence for one query.
func (c *Client) handle(ctx context.Context, query string, history []chat.Message, meta observe.QueryMeta) (*chat.Response, observe.QueryOutcome, error) {
	var outcome observe.QueryOutcome

	if hit := c.cache.Get(ctx, query); hit != nil {
		outcome.CacheHit = true
		return hit, outcome, nil
	}

	if !c.gate.IsActionAllowed(ctx, ActionQuery) {
		c.logger.Info(ctx, "query denied at guest limit",
			observe.Field{Key: "query.key", Value: meta.Key},
		)
		return nil, outcome, limitError()
	}

	// Spend the credit before the remote call. A remote failure does
	// not refund it.
	if !c.gate.TrackAPIAction(ctx, ActionQuery) {
		return nil, outcome, limitError()
	}
	outcome.CreditSpent = !meta.Authenticated

	var result atomic.Pointer[chat.Response]
	err := c.retry.Execute(ctx, func(ctx context.Context, attempt int) error {
		return resilience.ExecuteWithTimeout(ctx, c.attemptTimeout(attempt), func(ctx context.Context) error {
			r, qerr := c.querier.Query(ctx, query, history)
			if qerr != nil {
				return qerr
			}
			if r == nil {
				return &QueryError{Kind: KindParse, Err: errors.New("empty response")}
			}
			result.Store(r)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, outcome, err
		}
		return nil, outcome, classify(err)
	}

	r := result.Load()
	c.cache.Set(ctx, query, r)
	return r, outcome, nil
}

// attemptTimeout grows the per-attempt deadline linearly with the
// attempt number, capped at the configured maximum.
func (c *Client) attemptTimeout(attempt int) time.Duration {
	budget := time.Duration(attempt) * c.cfg.BaseTimeout
	if budget > c.cfg.MaxTimeout {
		budget = c.cfg.MaxTimeout
	}
	return budget
}

func (c *Client) authenticated(ctx context.Context) bool {
	return c.session != nil && c.session.IsAuthenticated(ctx)
}

// Config returns the client configuration with defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}
