package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/corebank/backend/internal/application/custody"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisLocker(t *testing.T, opts RedisOptions) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, opts, zap.NewNop()), mr
}

func TestRedisLocker_SerializesSameKey(t *testing.T) {
	locker, _ := newTestRedisLocker(t, RedisOptions{
		KeyPrefix:     "custody:lock:",
		RetryInterval: 2 * time.Millisecond,
		WaitTimeout:   5 * time.Second,
	})
	var inside, maxInside, done atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "custodian:a")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(3 * time.Millisecond)
			inside.Add(-1)
			done.Add(1)
			release()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInside.Load())
	assert.EqualValues(t, 10, done.Load())
}

func TestRedisLocker_TimesOut(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{
		KeyPrefix:     "custody:lock:",
		RetryInterval: 5 * time.Millisecond,
		WaitTimeout:   30 * time.Millisecond,
	})
	release, err := locker.Acquire(context.Background(), "acctday:b:2024-03-04")
	require.NoError(t, err)
	defer release()
	assert.True(t, mr.Exists("custody:lock:acctday:b:2024-03-04"))

	start := time.Now()
	_, err = locker.Acquire(context.Background(), "acctday:b:2024-03-04")
	assert.ErrorIs(t, err, custody.ErrLockNotAcquired)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRedisLocker_DistinctKeysDoNotBlock(t *testing.T) {
	locker, _ := newTestRedisLocker(t, RedisOptions{RetryInterval: 5 * time.Millisecond})
	releaseA, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(context.Background(), "b")
	require.NoError(t, err)
	releaseB()
}

func TestRedisLocker_ReleaseAfterCallerCancelled(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{RetryInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	release, err := locker.Acquire(ctx, "ceiling:t:SUB_TO_PRIMARY")
	require.NoError(t, err)
	cancel()
	release()
	assert.False(t, mr.Exists("ceiling:t:SUB_TO_PRIMARY"))

	release() // second call is a no-op

	again, err := locker.Acquire(context.Background(), "ceiling:t:SUB_TO_PRIMARY")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_CancelledBeforeAcquire(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{RetryInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := locker.Acquire(ctx, "k")
	assert.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestRedisLocker_RefreshesHeldLease(t *testing.T) {
	ttl := 200 * time.Millisecond
	locker, mr := newTestRedisLocker(t, RedisOptions{TTL: ttl, RetryInterval: 5 * time.Millisecond})
	release, err := locker.Acquire(context.Background(), "custodian:x")
	require.NoError(t, err)
	defer release()

	// miniredis only ages keys on FastForward
	mr.FastForward(150 * time.Millisecond)
	require.LessOrEqual(t, mr.TTL("custodian:x"), 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		return mr.TTL("custodian:x") > 100*time.Millisecond
	}, time.Second, 10*time.Millisecond, "lease should be extended while held")
}
