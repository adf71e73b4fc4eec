package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client, ""), mr
}

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	const key = "user-1:key-1"

	t.Run("first reservation wins", func(t *testing.T) {
		ok, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("custody:idempotency:"+key))

		ok, err = store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("pending key has no response", func(t *testing.T) {
		resp, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("completed key replays the response", func(t *testing.T) {
		require.NoError(t, store.Complete(ctx, key, []byte(`{"reference":"WD-1"}`), time.Hour))
		resp, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"reference":"WD-1"}`, string(resp))

		ok, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "a completed key stays claimed")
	})

	t.Run("unknown key", func(t *testing.T) {
		resp, err := store.Get(ctx, "user-1:other")
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("release allows a retry", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.Release(ctx, "user-1:key-2"))

		ok, err = store.Reserve(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("keys expire after ttl", func(t *testing.T) {
		require.NoError(t, store.Complete(ctx, "user-1:key-3", []byte(`{}`), time.Minute))
		mr.FastForward(2 * time.Minute)

		resp, err := store.Get(ctx, "user-1:key-3")
		require.NoError(t, err)
		assert.Nil(t, resp)
		ok, err := store.Reserve(ctx, "user-1:key-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestRedisIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store, _ := newTestRedisStore(t)
	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(context.Background(), "user-2:key", time.Hour)
			if assert.NoError(t, err) && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, winners.Load())
}

func TestRedisIdempotencyStore_Unavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Reserve(context.Background(), "user-3:key", time.Hour)
	assert.ErrorContains(t, err, "reserve idempotency key")
}
