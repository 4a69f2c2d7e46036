// Package store provides small key-value persistence backends for
// assistant state: cached responses, guest action counters, and the
// guest fingerprint.
//
// Three implementations sit behind the Store interface: MemoryStore
// for tests and ephemeral use, FileStore for single-machine
// persistence, and RedisStore for state shared across processes.
package store
