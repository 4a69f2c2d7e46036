// Package observe provides observability primitives for query handling.
//
// It is a pure instrumentation library: no querying, no storage, no I/O
// beyond exporter setup. Consumers wire the observer into the assistant
// client or its middleware.
package observe
