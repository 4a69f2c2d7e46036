// Package cache provides the query normalizer and the TTL response
// cache backing the shopping assistant client.
//
// Responses are cached under a deterministic key derived from the
// query text, and the whole map is persisted as a single JSON blob in
// a durable store. The cache is best-effort: storage failures degrade
// to misses and no-ops and are logged, never surfaced to the request
// flow.
package cache
