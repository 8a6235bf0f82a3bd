package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/driprate/driprate/pkg/storage"
)

func TestMemcached_Integration(t *testing.T) {
	client := memcache.New("localhost:11211")
	if err := client.Ping(); err != nil {
		t.Skipf("Skipping integration test: memcached not available (%v)", err)
	}

	ctx := context.Background()
	adapter := storage.NewMemcached(client)
	key := fmt.Sprintf("driprate_it_%d", time.Now().UnixNano())

	t.Run("SetGetExistsDelete", func(t *testing.T) {
		if err := adapter.Set(ctx, key, []byte("hello"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, ok, err := adapter.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || string(value) != "hello" {
			t.Errorf("Expected hello, got %q (ok=%v)", value, ok)
		}

		exists, err := adapter.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if !exists {
			t.Error("Expected key to exist")
		}

		if err := adapter.Delete(ctx, key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := adapter.Delete(ctx, key); err != nil {
			t.Errorf("Deleting an absent key should succeed, got %v", err)
		}
		if _, ok, _ := adapter.Get(ctx, key); ok {
			t.Error("Expected key to be gone after Delete")
		}
	})

	t.Run("IncrementCreatesThenCounts", func(t *testing.T) {
		counterKey := key + "_ctr"
		defer adapter.Delete(ctx, counterKey)

		n, err := adapter.Increment(ctx, counterKey, 1, time.Minute)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1, got %d", n)
		}

		n, err = adapter.Increment(ctx, counterKey, 2, time.Minute)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if n != 3 {
			t.Errorf("Expected 3, got %d", n)
		}
	})
}
