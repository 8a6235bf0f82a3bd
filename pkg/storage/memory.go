package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/driprate/driprate/pkg/clock"
)

type memItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// Memory is an in-process Adapter backed by a map. State is local to the
// process; use the Redis or memcached adapters when a limit must be shared
// across replicas.
//
// Expiry is checked lazily against the injected Clock on every read, which
// makes TTL behavior testable with a virtual clock. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memItem
	clock clock.Clock
}

// MemoryOption configures a Memory adapter.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the clock used for expiry checks.
func WithMemoryClock(c clock.Clock) MemoryOption {
	return func(m *Memory) {
		m.clock = c
	}
}

// NewMemory constructs an empty in-process adapter.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]memItem),
		clock: clock.NewReal(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) live(item memItem) bool {
	return item.expiresAt.IsZero() || m.clock.Now().Before(item.expiresAt)
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memItem{value: make([]byte, len(value))}
	copy(item.value, value)
	if ttl > 0 {
		item.expiresAt = m.clock.Now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok || !m.live(item) {
		return nil, false, nil
	}
	val := make([]byte, len(item.value))
	copy(val, item.value)
	return val, true, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	return ok && m.live(item), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Increment implements the Incrementer capability. The counter is stored as
// a decimal string; ttl is applied only when the key is created or had
// expired.
func (m *Memory) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	item, ok := m.items[key]
	if ok && m.live(item) {
		n, err := strconv.ParseInt(string(item.value), 10, 64)
		if err == nil {
			current = n
		}
	} else {
		item = memItem{}
		if ttl > 0 {
			item.expiresAt = m.clock.Now().Add(ttl)
		}
	}

	current += delta
	item.value = strconv.AppendInt(nil, current, 10)
	m.items[key] = item
	return current, nil
}

// Cleanup removes expired items. The adapter works correctly without it;
// long-running processes with high-cardinality keys should call it
// periodically to bound memory.
func (m *Memory) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for key, item := range m.items {
		if !item.expiresAt.IsZero() && !now.Before(item.expiresAt) {
			delete(m.items, key)
		}
	}
}

// Len returns the number of stored items, including expired ones not yet
// swept by Cleanup.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
