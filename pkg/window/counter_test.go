package window_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driprate/driprate/pkg/clock"
	"github.com/driprate/driprate/pkg/storage"
	"github.com/driprate/driprate/pkg/window"
)

// plainStore hides the Incrementer capability of the wrapped adapter so
// tests can exercise the get/set fallback path.
type plainStore struct {
	inner storage.Adapter
}

func (p *plainStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, key, value, ttl)
}

func (p *plainStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, key)
}

func (p *plainStore) Exists(ctx context.Context, key string) (bool, error) {
	return p.inner.Exists(ctx, key)
}

func (p *plainStore) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, key)
}

// brokenStore fails every operation.
type brokenStore struct {
	err error
}

func (b *brokenStore) Set(context.Context, string, []byte, time.Duration) error { return b.err }
func (b *brokenStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, b.err }
func (b *brokenStore) Exists(context.Context, string) (bool, error)             { return false, b.err }
func (b *brokenStore) Delete(context.Context, string) error                     { return b.err }

func TestNewCounter_Validation(t *testing.T) {
	store := storage.NewMemory()

	_, err := window.NewCounter("x", 0, time.Minute, store)
	assert.ErrorIs(t, err, window.ErrInvalidLimit)

	_, err = window.NewCounter("x", 5, 0, store)
	assert.ErrorIs(t, err, window.ErrInvalidLimit)
}

func TestCheck_EnforcesLimit(t *testing.T) {
	ctx := context.Background()
	c := clock.NewVirtual(time.Unix(1_700_000_000, 0))

	run := func(t *testing.T, store storage.Adapter) {
		counter, err := window.NewCounter("req", 3, time.Minute, store)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			allowed, err := counter.Check(ctx, "client-a")
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}

		allowed, err := counter.Check(ctx, "client-a")
		require.NoError(t, err)
		assert.False(t, allowed, "request over the limit should be rejected")

		// Other identities are unaffected.
		allowed, err = counter.Check(ctx, "client-b")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	t.Run("atomic increment path", func(t *testing.T) {
		run(t, storage.NewMemory(storage.WithMemoryClock(c)))
	})

	t.Run("plain get/set path", func(t *testing.T) {
		run(t, &plainStore{inner: storage.NewMemory(storage.WithMemoryClock(c))})
	})
}

func TestCheck_WindowExpires(t *testing.T) {
	ctx := context.Background()
	c := clock.NewVirtual(time.Unix(1_700_000_000, 0))
	store := storage.NewMemory(storage.WithMemoryClock(c))

	counter, err := window.NewCounter("req", 2, time.Minute, store)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		allowed, err := counter.Check(ctx, "client")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := counter.Check(ctx, "client")
	require.NoError(t, err)
	require.False(t, allowed)

	// Once the window's TTL elapses the counter starts over.
	c.Advance(61 * time.Second)
	allowed, err = counter.Check(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheck_TTLOnlyOnFirstIncrement(t *testing.T) {
	ctx := context.Background()
	c := clock.NewVirtual(time.Unix(1_700_000_000, 0))
	store := storage.NewMemory(storage.WithMemoryClock(c))

	counter, err := window.NewCounter("req", 100, time.Minute, store)
	require.NoError(t, err)

	_, err = counter.Check(ctx, "client")
	require.NoError(t, err)

	// Keep hitting the counter just before the window ends. If later
	// increments refreshed the TTL this would slide the window forever.
	c.Advance(59 * time.Second)
	_, err = counter.Check(ctx, "client")
	require.NoError(t, err)

	c.Advance(2 * time.Second)
	ok, err := store.Exists(ctx, counter.Key("client"))
	require.NoError(t, err)
	assert.False(t, ok, "window should have expired at its original boundary")
}

func TestCheck_RejectionDoesNotWrite_PlainPath(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemory()
	store := &plainStore{inner: inner}

	counter, err := window.NewCounter("req", 1, time.Minute, store)
	require.NoError(t, err)

	allowed, err := counter.Check(ctx, "client")
	require.NoError(t, err)
	require.True(t, allowed)

	for i := 0; i < 3; i++ {
		allowed, err = counter.Check(ctx, "client")
		require.NoError(t, err)
		require.False(t, allowed)
	}

	// Rejected checks must not have mutated the stored count.
	value, ok, err := inner.Get(ctx, counter.Key("client"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", string(value))
}

func TestCheck_StorageFailureIsNotADecision(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")

	counter, err := window.NewCounter("req", 5, time.Minute, &brokenStore{err: boom})
	require.NoError(t, err)

	allowed, err := counter.Check(ctx, "client")
	require.ErrorIs(t, err, window.ErrStorage)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), counter.Key("client"))
	assert.False(t, allowed)
}

func TestScenario_TwoPerMinutePerIP(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	counter, err := window.NewCounter("ip", 2, 60*time.Second, store)
	require.NoError(t, err)

	allowed, err := counter.Check(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = counter.Check(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = counter.Check(ctx, "a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = counter.Check(ctx, "b")
	require.NoError(t, err)
	assert.True(t, allowed, "identities are independent")
}
