package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/corebank/backend/internal/application/custody"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions tunes the Redis locker
type RedisOptions struct {
	KeyPrefix     string
	TTL           time.Duration
	RetryInterval time.Duration
	WaitTimeout   time.Duration
}

// RedisLocker leases keys in Redis so every replica sees the same locks.
// A held lease is refreshed every TTL/2 until released, so TTL only bounds
// how long a crashed holder keeps the key.
type RedisLocker struct {
	client *redislock.Client
	opts   RedisOptions
	logger *zap.Logger
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisLocker wraps an existing client
func NewRedisLocker(client redis.UniversalClient, opts RedisOptions, logger *zap.Logger) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	return &RedisLocker{
		client: redislock.New(client),
		opts:   opts,
		logger: logger.Named("redislock"),
	}
}

// Acquire obtains the lease, retrying with linear backoff until the wait
// budget is spent.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	retries := 0
	if l.opts.WaitTimeout > 0 {
		retries = int(l.opts.WaitTimeout / l.opts.RetryInterval)
	}
	strategy := redislock.LimitRetry(redislock.LinearBackoff(l.opts.RetryInterval), retries)

	fullKey := l.opts.KeyPrefix + key
	lease, err := l.client.Obtain(ctx, fullKey, l.opts.TTL, &redislock.Options{RetryStrategy: strategy})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, custody.ErrLockNotAcquired.WithMessage(fmt.Sprintf("Timed out waiting for %s", key))
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	done := make(chan struct{})
	go l.keepAlive(lease, fullKey, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			// the caller's context may already be cancelled
			relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := lease.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("failed to release lock", zap.String("key", fullKey), zap.Error(err))
			}
		})
	}, nil
}

func (l *RedisLocker) keepAlive(lease *redislock.Lock, key string, done <-chan struct{}) {
	ticker := time.NewTicker(l.opts.TTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.opts.TTL/2)
			err := lease.Refresh(ctx, l.opts.TTL, nil)
			cancel()
			if err != nil {
				l.logger.Warn("failed to refresh lock", zap.String("key", key), zap.Error(err))
				return
			}
		}
	}
}

var _ custody.KeyLocker = (*RedisLocker)(nil)
