// Package ratelimit implements fixed-window request throttling for the
// sensitive endpoints. Counters live behind the Store interface so a single
// deployment can count in process while a multi-instance deployment shares
// counters through Redis; the check contract is identical either way.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store atomically counts hits per key within a fixed window.
type Store interface {
	// Incr increments the counter for key, starting a new window when none
	// is active, and returns the post-increment count together with the
	// time remaining until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

type localEntry struct {
	count   int64
	resetAt time.Time
}

// LocalStore is an in-process Store guarded by a mutex. Expired windows are
// dropped lazily on access and swept opportunistically, so the map does not
// grow without bound under normal traffic.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string]localEntry
	now     func() time.Time
}

// NewLocalStore returns an empty in-process counter store.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		entries: make(map[string]localEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Incr implements Store.
func (s *LocalStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = localEntry{count: 0, resetAt: now.Add(window)}
	}
	e.count++
	s.entries[key] = e

	if len(s.entries) > 10000 {
		s.sweep(now)
	}
	return e.count, e.resetAt.Sub(now), nil
}

// sweep removes entries whose window has elapsed. Caller holds the mutex.
func (s *LocalStore) sweep(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
}
