// Package lock implements custody.KeyLocker, in process for single node
// deployments and tests, and on Redis when several replicas share a database.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corebank/backend/internal/application/custody"
)

// MemoryLocker serializes work per key inside one process
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	held chan struct{}
	refs int
}

// NewMemoryLocker creates a locker. Callers give up with
// custody.ErrLockNotAcquired after wait; zero waits for the context only.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot), wait: wait}
}

// Acquire blocks until key is free, the wait budget is spent or ctx ends
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case s.held <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, ctx.Err()
	case <-timeout:
		l.unref(key, s)
		return nil, custody.ErrLockNotAcquired.WithMessage(fmt.Sprintf("Timed out waiting for %s", key))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.held
			l.unref(key, s)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

var _ custody.KeyLocker = (*MemoryLocker)(nil)
