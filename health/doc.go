// Package health provides health checking primitives for the assistant's
// backing components.
//
// This package implements a small health checking framework for apps
// embedding the assistant client. It provides interfaces for defining
// health checks, checkers for the durable store and the response cache,
// and an aggregator that combines results from multiple checkers.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Check that the durable store answers
//	storeCheck := health.NewStoreChecker(st)
//
//	result := storeCheck.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("store down: %s", result.Message)
//	}
//
// # Cache Occupancy
//
// CacheChecker reports response cache occupancy and degrades when expired
// entries dominate, signalling that a ClearExpired sweep is due:
//
//	cacheCheck := health.NewCacheChecker(responses, health.CacheCheckerConfig{
//	    MaxExpiredRatio: 0.5,
//	})
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("store", health.NewStoreChecker(st))
//	agg.Register("cache", health.NewCacheChecker(responses))
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
package health
