package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached adapts a gomemcache client to the Adapter contract. gomemcache
// does not take a context, so deadlines are configured on the client itself
// (Timeout field); the ctx parameters are ignored.
type Memcached struct {
	client *memcache.Client
}

// NewMemcached wraps an existing memcached client.
func NewMemcached(client *memcache.Client) *Memcached {
	return &Memcached{client: client}
}

func ttlSeconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	return int32(ttl / time.Second)
}

func (m *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: ttlSeconds(ttl),
	})
}

func (m *Memcached) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (m *Memcached) Exists(_ context.Context, key string) (bool, error) {
	_, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memcached) Delete(_ context.Context, key string) error {
	err := m.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Increment implements the Incrementer capability using memcached's native
// add/incr pair: Add creates the counter with the ttl, incr never touches
// the ttl. Only positive deltas are supported.
func (m *Memcached) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	n, err := m.client.Increment(key, uint64(delta))
	if err == nil {
		return int64(n), nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return 0, err
	}

	err = m.client.Add(&memcache.Item{
		Key:        key,
		Value:      strconv.AppendInt(nil, delta, 10),
		Expiration: ttlSeconds(ttl),
	})
	if err == nil {
		return delta, nil
	}
	if !errors.Is(err, memcache.ErrNotStored) {
		return 0, err
	}

	// Lost the creation race; the counter now exists.
	n, err = m.client.Increment(key, uint64(delta))
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
