// Package cache holds short lived shared state: the response cache behind
// idempotent cash operations.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	response  []byte // nil while the operation runs
	expiresAt time.Time
}

// MemoryIdempotencyStore keeps idempotency keys in process. It suits a
// single replica and tests.
type MemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemoryIdempotencyStore creates a store that sweeps expired keys every
// sweepInterval
func NewMemoryIdempotencyStore(sweepInterval time.Duration) *MemoryIdempotencyStore {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	s := &MemoryIdempotencyStore{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	s.wg.Add(1)
	go s.sweepLoop(sweepInterval)
	return s
}

// Reserve claims key. It returns false when the key is already reserved
// or completed and has not expired.
func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = entry{expiresAt: s.now().Add(ttl)}
	return true, nil
}

// Get returns the stored response, or nil while the key is pending or unknown
func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	return e.response, nil
}

// Complete stores the response under key for ttl
func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{response: append([]byte(nil), response...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Release forgets key so the operation may be retried
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of live and expired keys not yet swept
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryIdempotencyStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
