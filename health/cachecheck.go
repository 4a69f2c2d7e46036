package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/shopassist/cache"
)

// CacheCheckerConfig configures a CacheChecker.
type CacheCheckerConfig struct {
	// MaxExpiredRatio is the fraction of expired entries above which the
	// cache reports degraded, a signal that a ClearExpired sweep is due.
	// Default: 0.5
	MaxExpiredRatio float64
}

// CacheChecker reports response cache occupancy. A cache dominated by
// expired entries is degraded rather than unhealthy: reads still work,
// but most of the persisted blob is dead weight.
type CacheChecker struct {
	cache  *cache.ResponseCache
	config CacheCheckerConfig
}

// NewCacheChecker creates a checker for the given response cache.
func NewCacheChecker(c *cache.ResponseCache, config ...CacheCheckerConfig) *CacheChecker {
	cfg := CacheCheckerConfig{
		MaxExpiredRatio: 0.5,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.MaxExpiredRatio <= 0 {
			cfg.MaxExpiredRatio = 0.5
		}
	}

	return &CacheChecker{cache: c, config: cfg}
}

var _ InfoChecker = (*CacheChecker)(nil)

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reports cache occupancy with entry counts in the details.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if c.cache == nil {
		return Unhealthy("cache not configured", ErrCheckFailed)
	}

	stats := c.cache.Stats(ctx)
	details := map[string]any{
		"total":   stats.Total,
		"valid":   stats.Valid,
		"expired": stats.Expired,
	}

	if stats.Total > 0 {
		ratio := float64(stats.Expired) / float64(stats.Total)
		if ratio > c.config.MaxExpiredRatio {
			return Degraded(
				fmt.Sprintf("%d of %d entries expired", stats.Expired, stats.Total),
			).WithDetails(details)
		}
	}

	return Healthy(
		fmt.Sprintf("%d valid entries", stats.Valid),
	).WithDetails(details)
}

// Info returns the cache occupancy counters.
func (c *CacheChecker) Info(ctx context.Context) (map[string]any, error) {
	if c.cache == nil {
		return nil, ErrCheckFailed
	}

	stats := c.cache.Stats(ctx)
	return map[string]any{
		"total":   stats.Total,
		"valid":   stats.Valid,
		"expired": stats.Expired,
	}, nil
}
