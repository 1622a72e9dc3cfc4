package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// exerciseIdempotencyStore runs the behavior every store must share
func exerciseIdempotencyStore(t *testing.T, store shared.IdempotencyStore) {
	ctx := context.Background()

	t.Run("claims a new key once", func(t *testing.T) {
		fresh, err := store.MarkProcessed(ctx, "order-1:key-a", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkProcessed(ctx, "order-1:key-a", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh, "second claim must fail")

		claimed, err := store.IsProcessed(ctx, "order-1:key-a")
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("unknown key is not processed", func(t *testing.T) {
		claimed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("released key can be claimed again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "order-2:key-b", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "order-2:key-b"))

		fresh, err := store.MarkProcessed(ctx, "order-2:key-b", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("concurrent claims have a single winner", func(t *testing.T) {
		var winners int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fresh, err := store.MarkProcessed(ctx, "order-3:key-c", time.Hour)
				if err == nil && fresh {
					atomic.AddInt32(&winners, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners)
	})
}

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	exerciseIdempotencyStore(t, store)

	t.Run("expired key can be claimed again", func(t *testing.T) {
		ctx := context.Background()
		_, err := store.MarkProcessed(ctx, "short", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		claimed, err := store.IsProcessed(ctx, "short")
		require.NoError(t, err)
		assert.False(t, claimed)

		fresh, err := store.MarkProcessed(ctx, "short", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := newInMemoryIdempotencyStore(5 * time.Millisecond)
	defer store.Close()

	_, err := store.MarkProcessed(context.Background(), "gone-soon", time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr, client := newMiniredisClient(t)
	store := NewRedisIdempotencyStore(client, "")

	exerciseIdempotencyStore(t, store)

	t.Run("keys are prefixed and expire", func(t *testing.T) {
		ctx := context.Background()
		_, err := store.MarkProcessed(ctx, "ttl-key", time.Minute)
		require.NoError(t, err)
		assert.True(t, mr.Exists("pricing:idempotency:ttl-key"))

		mr.FastForward(2 * time.Minute)

		claimed, err := store.IsProcessed(ctx, "ttl-key")
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("connection errors are returned", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer broken.Close()

		_, err := NewRedisIdempotencyStore(broken, "x:").MarkProcessed(context.Background(), "k", time.Minute)
		assert.Error(t, err)
	})
}
