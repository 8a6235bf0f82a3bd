package storage

import (
	"context"
	"time"
)

// Adapter is the minimal key-value contract the rate limiting engines depend
// on. Backends only need get/set/exists/delete with TTL; nothing here is
// transactional and no operation performs an atomic read-modify-write.
// Engines are written to tolerate lost updates between a Get and a later Set
// issued by a concurrent caller.
//
// Implementations must be safe for concurrent use: a single Adapter is
// typically shared by many identities and buckets.
type Adapter interface {
	// Set stores value under key, overwriting any existing value. The key
	// auto-expires after ttl; ttl <= 0 leaves expiry to the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value for key. A missing or expired key yields
	// ok=false with a nil error; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Exists reports whether key currently holds a live value. It agrees
	// with a concurrent Get in the absence of a racing writer; races under
	// concurrent writers are tolerated.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key unconditionally. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// Incrementer is an optional capability for backends with native atomic
// counters. Increment adds delta to the counter at key and returns the new
// value; ttl is applied only when the key is created, never refreshed on
// later increments (memcached add+incr semantics, Redis INCR+EXPIRE NX).
//
// Engines type-assert for this interface and prefer it over a Get/Set cycle
// when present, which removes the lost-update window between concurrent
// callers of the same key.
type Incrementer interface {
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}
