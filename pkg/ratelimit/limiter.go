// Package ratelimit is the front door of this module: a Limiter binds a
// limiter name, a limit, a period, and a storage adapter into a single
// Check(identity) call returning allow or reject.
//
// The facade holds no state of its own beyond the engine it delegates to.
// Storage failures surface as errors and are never folded into the boolean;
// whether to fail open or closed on a backend outage is the caller's call.
package ratelimit

import (
	"context"
	"time"

	"github.com/driprate/driprate/pkg/storage"
	"github.com/driprate/driprate/pkg/window"
)

// Limiter enforces "at most limit events per period" per identity via a
// fixed-window counter over the given adapter. Construct one per logical
// limit (for example "ip" or "login") and share it across goroutines; the
// Limiter itself is stateless between calls.
type Limiter struct {
	name     string
	counter  *window.Counter
	recorder MetricsRecorder
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithRecorder injects a metrics backend. The default recorder discards
// everything.
func WithRecorder(r MetricsRecorder) Option {
	return func(l *Limiter) {
		l.recorder = r
	}
}

// New constructs a Limiter named name allowing limit events per period,
// with state held in store.
func New(name string, limit int64, period time.Duration, store storage.Adapter, opts ...Option) (*Limiter, error) {
	counter, err := window.NewCounter(name, limit, period, store)
	if err != nil {
		return nil, err
	}

	l := &Limiter{
		name:     name,
		counter:  counter,
		recorder: NoOpRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check records one event for identity and reports whether it is allowed.
// On a storage failure the error is non-nil and the bool carries no
// meaning; callers must check the error first.
func (l *Limiter) Check(ctx context.Context, identity string) (bool, error) {
	start := time.Now()
	tags := map[string]string{"limiter": l.name}

	allowed, err := l.counter.Check(ctx, identity)

	l.recorder.Add("ratelimit.call", 1, tags)
	l.recorder.Observe("ratelimit.latency", time.Since(start).Seconds(), tags)
	if err != nil {
		l.recorder.Add("ratelimit.error", 1, tags)
		return false, err
	}
	if allowed {
		l.recorder.Add("ratelimit.allowed", 1, tags)
	} else {
		l.recorder.Add("ratelimit.denied", 1, tags)
	}
	return allowed, nil
}

// Name returns the limiter name.
func (l *Limiter) Name() string {
	return l.name
}

// Limit returns the configured limit.
func (l *Limiter) Limit() int64 {
	return l.counter.Limit()
}

// Period returns the configured window length.
func (l *Limiter) Period() time.Duration {
	return l.counter.Period()
}
