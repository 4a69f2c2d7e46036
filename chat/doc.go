// Package chat defines the message, product, and response types
// exchanged with the shopping assistant backend.
//
// The types are shared by the cache, the HTTP querier, and the client
// orchestrator, and carry the JSON shapes used on the wire and in
// persisted cache entries.
package chat
