package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/driprate/driprate/pkg/storage"
)

func TestConnectRedis_BadConnectionURL(t *testing.T) {
	_, err := storage.ConnectRedis(context.Background(), storage.RedisConfig{
		ConnectionURL:  "not-a-url",
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, storage.ErrBadConnectionURL)
}

func TestConnectRedis_NotReady(t *testing.T) {
	// Nothing listens on this port; all attempts should fail fast.
	_, err := storage.ConnectRedis(context.Background(), storage.RedisConfig{
		ConnectionURL:  "redis://localhost:1/0",
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, storage.ErrRedisNotReady)
}
