// Package leakybucket implements a storage-backed leaky bucket: a float
// drop count that drains continuously at a fixed rate and fills by
// caller-chosen amounts, rejecting work when full.
//
// # Model
//
// Each bucket is addressed by a name; state lives in the storage adapter
// under the key
//
//	leakybucket:v1:{name}:bucket
//
// as a JSON record {"drops": n, "time": unix seconds, "data": ...}. Every
// public call sequence is a full load-mutate-persist round trip: New loads,
// the mutation methods work on memory, Save persists. Nothing is cached
// across instances, so two processes sharing a backend see each other's
// saved state.
//
// # Call cycle
//
// The intended per-request cycle is load, fill or spill, leak, clamp, save:
//
//	b, err := leakybucket.New(ctx, "api:"+userID, store)
//	if err != nil { ... }
//	b.Leak()
//	if err := b.Fill(1); err != nil { ... }
//	b.Overflow()
//	if b.IsFull() {
//		// reject
//	}
//	if err := b.Save(ctx); err != nil { ... }
//
// Leak is explicit: it drains for the time elapsed since the last Save and
// is never applied automatically on load, so callers control exactly where
// the time-based drain lands in their cycle.
//
// # Semantics worth knowing
//
//   - Fill does not clamp; Overflow is the separate clamping step, which
//     lets callers observe the pre-clamp overshoot via CapacityLeft.
//   - IsFull uses ceil(drops) >= capacity: a bucket within one drop of
//     capacity is already full.
//   - Records are saved with TTL floor(capacity/leakRate*1.5) seconds, so a
//     full bucket always outlives its own drain time but idle buckets are
//     reclaimed.
//   - A stored record missing either field is treated exactly like an
//     absent one: the bucket reinitializes empty. Corruption is never an
//     error.
//
// # Errors
//
// Fill rejects non-positive amounts with ErrInvalidAmount before touching
// state. Adapter failures during New, Save, or Reset are returned wrapped
// in ErrStorage together with the bucket key; they always surface, since
// only the caller knows whether to retry, back off, or fail open.
//
// # Concurrency
//
// A Bucket instance is not safe for concurrent use and holds no locks
// between calls. Two instances racing on the same name over a plain get/set
// backend can lose updates to each other; the adapter's own guarantees are
// the only cross-instance coordination.
package leakybucket
