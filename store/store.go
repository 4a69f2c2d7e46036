package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal string key-value persistence port.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get returns ErrNotFound on missing keys. Delete is
//   idempotent and does not error on missing keys.
type Store interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the value stored under key.
	Delete(ctx context.Context, key string) error
}
