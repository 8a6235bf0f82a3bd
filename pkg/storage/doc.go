// Package storage defines the key-value contract the rate limiting engines
// run against, plus thin adapters for the bundled backends.
//
// # Contract
//
// Adapter is deliberately minimal: Set, Get, Exists, Delete with a TTL on
// Set. The engines own all arithmetic; the adapter owns durability and
// expiry. A missing key is reported through Get's ok result, never through
// an error, so backends must reserve their error return for real failures
// (unreachable server, protocol errors, timeouts).
//
// Incrementer is an optional capability for backends with native atomic
// counters. When an adapter implements it, the window counter engine uses
// Increment instead of a Get/Set cycle, which closes the lost-update race
// between concurrent callers of the same key.
//
// # Backends
//
//   - Memory: process-local map with lazy TTL checks against an injectable
//     clock. Best for tests and single-instance deployments.
//   - Redis: pass-through over a go-redis client. Use it when a limit must
//     hold across replicas.
//   - Memcached: pass-through over gomemcache. Increment maps to the native
//     add/incr pair, so window TTLs stick only on creation, exactly as the
//     counter engine expects.
//
// All three are safe for concurrent use. The Memory adapter additionally
// exposes Cleanup for sweeping expired entries in long-running processes.
//
// # Consistency
//
// No adapter operation is transactional across keys and none besides
// Increment performs an atomic read-modify-write. Engines tolerate lost
// updates; see the window package for what that means for enforcement.
package storage
