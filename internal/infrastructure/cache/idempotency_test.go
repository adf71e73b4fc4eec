package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	t.Run("first reservation wins", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "teller-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "teller-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("pending key has no response", func(t *testing.T) {
		resp, err := store.Get(ctx, "teller-1:key-1")
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("completed key replays the response", func(t *testing.T) {
		require.NoError(t, store.Complete(ctx, "teller-1:key-1", []byte(`{"reference":"WD-1"}`), time.Hour))

		resp, err := store.Get(ctx, "teller-1:key-1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"reference":"WD-1"}`, string(resp))

		ok, err := store.Reserve(ctx, "teller-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("released key can be reserved again", func(t *testing.T) {
		_, err := store.Reserve(ctx, "teller-1:key-2", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "teller-1:key-2"))

		ok, err := store.Reserve(ctx, "teller-1:key-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Complete(ctx, "k", []byte("done"), time.Minute))
	now = now.Add(2 * time.Minute)

	resp, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)

	ok, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired keys can be reused")

	now = now.Add(2 * time.Minute)
	store.sweep()
	assert.Equal(t, 0, store.Len())
}

func TestMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
