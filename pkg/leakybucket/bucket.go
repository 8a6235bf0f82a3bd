package leakybucket

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/driprate/driprate/pkg/clock"
	"github.com/driprate/driprate/pkg/storage"
)

// Default settings applied when the caller does not override them.
const (
	DefaultCapacity = 10.0
	DefaultLeakRate = 0.33 // drops per second
)

const (
	keyPrefix = "leakybucket:v1:"
	keySuffix = ":bucket"

	// ttlMargin keeps an idle record alive 50% longer than a full bucket
	// needs to drain, so a live bucket never expires under its caller.
	ttlMargin = 1.5
)

// Settings is the immutable per-bucket configuration.
type Settings struct {
	// Capacity is the maximum number of drops the bucket holds.
	Capacity float64
	// LeakRate is the continuous drain rate in drops per second.
	LeakRate float64
}

func (s Settings) validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %g", ErrInvalidSettings, s.Capacity)
	}
	if s.LeakRate <= 0 {
		return fmt.Errorf("%w: leak rate must be positive, got %g", ErrInvalidSettings, s.LeakRate)
	}
	return nil
}

// record is the stored wire form: {"drops": n, "time": unix seconds, "data": ...}.
// Pointer fields distinguish a missing field from a zero value; a record
// missing either drops or time is treated as absent.
type record struct {
	Drops *float64 `json:"drops"`
	Time  *float64 `json:"time"`
	Data  []byte   `json:"data,omitempty"`
}

// Bucket models a leaky bucket: it drains continuously at LeakRate and fills
// by caller-specified amounts. State is loaded from the adapter at
// construction and lives in memory until Save persists it; nothing is cached
// across instances.
//
// A Bucket is a single-call state machine and is not safe for concurrent use.
// The usual cycle per request is:
//
//	b, err := leakybucket.New(ctx, name, store)
//	b.Leak()
//	err = b.Fill(1)
//	b.Overflow()
//	full := b.IsFull()
//	err = b.Save(ctx)
type Bucket struct {
	key      string
	settings Settings
	store    storage.Adapter
	clock    clock.Clock

	drops float64
	// last persisted mutation, in fractional unix seconds. Only meaningful
	// relative to the clock of the instance that wrote it.
	time float64
	data []byte
}

// Option configures a Bucket at construction.
type Option func(*Bucket)

// WithCapacity overrides DefaultCapacity.
func WithCapacity(capacity float64) Option {
	return func(b *Bucket) {
		b.settings.Capacity = capacity
	}
}

// WithLeakRate overrides DefaultLeakRate.
func WithLeakRate(rate float64) Option {
	return func(b *Bucket) {
		b.settings.LeakRate = rate
	}
}

// WithSettings replaces both settings at once.
func WithSettings(s Settings) Option {
	return func(b *Bucket) {
		b.settings = s
	}
}

// WithClock overrides the clock used for leak arithmetic and timestamps.
func WithClock(c clock.Clock) Option {
	return func(b *Bucket) {
		b.clock = c
	}
}

// New loads the bucket named name from store, reinitializing to an empty
// bucket when the record is absent or malformed. An adapter failure during
// the load is returned as ErrStorage.
func New(ctx context.Context, name string, store storage.Adapter, opts ...Option) (*Bucket, error) {
	b := &Bucket{
		key:      keyPrefix + name + keySuffix,
		settings: Settings{Capacity: DefaultCapacity, LeakRate: DefaultLeakRate},
		store:    store,
		clock:    clock.NewReal(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.settings.validate(); err != nil {
		return nil, err
	}

	if err := b.load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bucket) now() float64 {
	return float64(b.clock.Now().UnixNano()) / float64(time.Second)
}

// load reconstructs in-memory state from storage. Corruption is equivalent
// to absence: both fields reinitialize and no error is reported.
func (b *Bucket) load(ctx context.Context) error {
	value, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return fmt.Errorf("%w (key %q): %w", ErrStorage, b.key, err)
	}
	if !ok {
		b.reinit()
		return nil
	}

	var rec record
	if err := json.Unmarshal(value, &rec); err != nil || rec.Drops == nil || rec.Time == nil {
		b.reinit()
		return nil
	}

	b.drops = *rec.Drops
	b.time = *rec.Time
	b.data = rec.Data
	return nil
}

func (b *Bucket) reinit() {
	b.drops = 0
	b.time = b.now()
	b.data = nil
}

// Fill adds amount drops. The amount must be positive; the bucket is not
// clamped here, call Overflow to apply the capacity limit.
func (b *Bucket) Fill(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidAmount, amount)
	}
	b.drops += amount
	return nil
}

// Spill removes amount drops, flooring at zero.
func (b *Bucket) Spill(amount float64) {
	b.drops -= amount
	if b.drops < 0 {
		b.drops = 0
	}
}

// Leak drains the bucket for the wall-clock time elapsed since the last
// persisted mutation. It must be called explicitly; loading a bucket does
// not apply the drain. Leak does not advance the stored timestamp, Save
// does.
func (b *Bucket) Leak() {
	elapsed := b.now() - b.time
	if elapsed <= 0 {
		return
	}
	b.drops -= elapsed * b.settings.LeakRate
	if b.drops < 0 {
		b.drops = 0
	}
}

// Overflow clamps the drop count to the capacity.
func (b *Bucket) Overflow() {
	if b.drops > b.settings.Capacity {
		b.drops = b.settings.Capacity
	}
}

// IsFull reports whether the bucket has no room for a whole drop: true iff
// ceil(drops) >= capacity. The sub-unit tolerance is deliberate; a bucket at
// capacity-0.5 is already full.
func (b *Bucket) IsFull() bool {
	return math.Ceil(b.drops) >= b.settings.Capacity
}

// CapacityLeft returns capacity minus drops. It is not floored at zero; an
// over-filled bucket reports negative room until Overflow runs.
func (b *Bucket) CapacityLeft() float64 {
	return b.settings.Capacity - b.drops
}

// Drops returns the current drop count.
func (b *Bucket) Drops() float64 {
	return b.drops
}

// Capacity returns the configured capacity.
func (b *Bucket) Capacity() float64 {
	return b.settings.Capacity
}

// LeakRate returns the configured drain rate in drops per second.
func (b *Bucket) LeakRate() float64 {
	return b.settings.LeakRate
}

// Key returns the storage key addressing this bucket.
func (b *Bucket) Key() string {
	return b.key
}

// SetData attaches an opaque payload that Save round-trips through storage
// alongside the bucket fields.
func (b *Bucket) SetData(data []byte) {
	b.data = data
}

// Data returns the opaque payload loaded with the bucket, nil when unset.
func (b *Bucket) Data() []byte {
	return b.data
}

// Touch sets the stored timestamp to now. Save calls it implicitly.
func (b *Bucket) Touch() {
	b.time = b.now()
}

// TTL returns the record lifetime Save uses: floor(capacity / leakRate * 1.5)
// seconds. Long enough to outlive a full bucket's drain time, short enough
// that idle buckets are eventually reclaimed by the backend.
func (b *Bucket) TTL() time.Duration {
	seconds := math.Floor(b.settings.Capacity / b.settings.LeakRate * ttlMargin)
	return time.Duration(seconds) * time.Second
}

// Save touches the timestamp and persists {drops, time, data}. Mutations are
// not durable until Save succeeds.
func (b *Bucket) Save(ctx context.Context) error {
	b.Touch()

	rec := record{Drops: &b.drops, Time: &b.time, Data: b.data}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w (key %q): %w", ErrStorage, b.key, err)
	}

	if err := b.store.Set(ctx, b.key, payload, b.TTL()); err != nil {
		return fmt.Errorf("%w (key %q): %w", ErrStorage, b.key, err)
	}
	return nil
}

// Reset deletes the stored record and reinitializes the in-memory state.
// The next load starts from an empty bucket.
func (b *Bucket) Reset(ctx context.Context) error {
	if err := b.store.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("%w (key %q): %w", ErrStorage, b.key, err)
	}
	b.reinit()
	return nil
}
