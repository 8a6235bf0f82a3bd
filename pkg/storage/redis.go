package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis adapts a go-redis client to the Adapter contract. It is a thin
// pass-through: every method maps to a single Redis command (Increment uses
// a two-command pipeline) and concurrency safety is delegated to Redis and
// the client.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a Redis adapter.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix (default "driprate:").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// NewRedis wraps an existing client. The client's lifecycle stays with the
// caller; the adapter never closes it.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "driprate:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Increment implements the Incrementer capability with INCRBY followed by
// EXPIRE NX, so the ttl only sticks when the key was created by this call.
func (r *Redis) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.IncrBy(ctx, r.prefix+key, delta)
	if ttl > 0 {
		pipe.ExpireNX(ctx, r.prefix+key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
