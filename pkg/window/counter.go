// Package window implements a fixed-window counter limiter: at most limit
// events per period per identity, with the count stored as a raw number in
// the adapter.
//
// The window is fixed, not sliding. The counter's TTL is set once, when the
// first event of a window creates the key, and is never refreshed by later
// events. A client can therefore burst up to 2x the limit across a window
// boundary (limit events at the end of one window, limit more at the start
// of the next). That bound is part of the contract; callers who need a
// smooth limit should use the leakybucket package instead.
package window

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/driprate/driprate/pkg/storage"
)

var (
	// ErrInvalidLimit indicates a non-positive limit or period at construction.
	ErrInvalidLimit = errors.New("invalid counter limit")

	// ErrStorage indicates the adapter failed during a check. The decision
	// bool accompanying it is meaningless; callers must treat the check as
	// neither allowed nor rejected.
	ErrStorage = errors.New("counter storage operation failed")
)

// Counter enforces "at most limit events per period" per identity.
//
// When the adapter implements storage.Incrementer the counter uses a single
// atomic increment-with-expiry, which makes concurrent checks race-free.
// Over a plain get/set adapter two concurrent checks can both read the same
// count and both be admitted; the race only ever under-enforces, never
// falsely rejects.
type Counter struct {
	name   string
	limit  int64
	period time.Duration
	store  storage.Adapter
}

// NewCounter constructs a counter named name enforcing limit events per
// period against store.
func NewCounter(name string, limit int64, period time.Duration, store storage.Adapter) (*Counter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidLimit, limit)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %v", ErrInvalidLimit, period)
	}
	return &Counter{
		name:   name,
		limit:  limit,
		period: period,
		store:  store,
	}, nil
}

// Key returns the storage key for an identity.
func (c *Counter) Key(identity string) string {
	return c.name + ":" + identity
}

// Check records one event for identity and reports whether it is within the
// limit. A storage failure is returned as ErrStorage and must be handled
// before looking at the bool.
func (c *Counter) Check(ctx context.Context, identity string) (bool, error) {
	key := c.Key(identity)

	if inc, ok := c.store.(storage.Incrementer); ok {
		count, err := inc.Increment(ctx, key, 1, c.period)
		if err != nil {
			return false, fmt.Errorf("%w (key %q): %w", ErrStorage, key, err)
		}
		return count <= c.limit, nil
	}

	return c.checkPlain(ctx, key)
}

// checkPlain is the fallback for adapters without atomic counters: read the
// count, reject at the limit without writing, otherwise write count+1. The
// TTL is attached only when the first event creates the key; later writes
// pass ttl 0 so the backend keeps its own expiry for the window.
func (c *Counter) checkPlain(ctx context.Context, key string) (bool, error) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w (key %q): %w", ErrStorage, key, err)
	}

	var count int64
	if ok {
		n, parseErr := strconv.ParseInt(string(value), 10, 64)
		if parseErr == nil {
			count = n
		}
		// An unparseable record counts as absent, same as the bucket engine.
	}

	if count >= c.limit {
		return false, nil
	}

	ttl := time.Duration(0)
	if count == 0 {
		ttl = c.period
	}
	next := strconv.AppendInt(nil, count+1, 10)
	if err := c.store.Set(ctx, key, next, ttl); err != nil {
		return false, fmt.Errorf("%w (key %q): %w", ErrStorage, key, err)
	}
	return true, nil
}

// Limit returns the configured limit.
func (c *Counter) Limit() int64 {
	return c.limit
}

// Period returns the configured window length.
func (c *Counter) Period() time.Duration {
	return c.period
}
