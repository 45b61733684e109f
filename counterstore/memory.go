package counterstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// Memory is an in-process [Store] for tests and single-instance embeddings.
// All operations, including the compound increment-and-flag, run under one
// mutex, so the atomicity contract matches the Redis implementation.
// Expired entries are reaped lazily on access; there is no sweeper.
type Memory struct {
	mu       sync.Mutex
	counters map[string]memoryEntry
	flags    map[string]time.Time

	now func() time.Time // swapped in clock-sensitive tests
}

// NewMemory creates an empty in-memory [Store].
func NewMemory() *Memory {
	return &Memory{
		counters: make(map[string]memoryEntry),
		flags:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// Increment bumps the counter, creating it with the TTL when absent or
// expired.
func (s *Memory) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementLocked(key, ttl), nil
}

// IncrementAndFlag performs the compound sequence under the store mutex.
func (s *Memory) IncrementAndFlag(ctx context.Context, key string, ttl time.Duration, threshold int64, flagKey string, flagTTL time.Duration) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.incrementLocked(key, ttl)
	if count > threshold {
		s.flags[flagKey] = s.now().Add(flagTTL)
		return count, true, nil
	}
	return count, false, nil
}

// SetFlag sets the flag with its own TTL.
func (s *Memory) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = s.now().Add(ttl)
	return nil
}

// FlagExists reports whether the flag is present and unexpired.
func (s *Memory) FlagExists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.flags[key]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.flags, key)
		return false, nil
	}
	return true, nil
}

// Delete removes the given counters and flags.
func (s *Memory) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.counters, k)
		delete(s.flags, k)
	}
	return nil
}

func (s *Memory) incrementLocked(key string, ttl time.Duration) int64 {
	now := s.now()
	e, ok := s.counters[key]
	if !ok || !e.expiresAt.After(now) {
		e = memoryEntry{count: 0, expiresAt: now.Add(ttl)}
	}
	e.count++
	s.counters[key] = e
	return e.count
}
