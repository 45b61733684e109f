// Package lockout drives the durable per-user failed-attempt counter and
// lock-until timestamp. Unlike the blocklist, this state lives in the user
// record store: it survives restarts and counter-store outages, which makes
// it the primary brute-force enforcement. Lock state is derived lazily from
// the timestamp; there is no background sweep and no explicit unlock
// transition.
package lockout

import (
	"context"
	"time"
)

// State is the per-user lockout snapshot read from the user record. A zero
// LockedUntil means the account has never been locked or was reset.
type State struct {
	FailedAttempts int
	LockedUntil    time.Time
}

// IsLocked reports whether the state counts as locked at the given instant.
func IsLocked(s State, now time.Time) bool {
	return !s.LockedUntil.IsZero() && s.LockedUntil.After(now)
}

// Remaining returns how much lock time is left at the given instant, zero
// when not locked.
func Remaining(s State, now time.Time) time.Duration {
	if !IsLocked(s, now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// Store is the narrow durable-store contract this package drives. The
// increment must apply the counter bump and the conditional lock timestamp
// in one atomic row-level update.
type Store interface {
	IncrementFailedAttempts(ctx context.Context, userID string, lockThreshold int, lockDuration time.Duration) error
	ResetFailedAttempts(ctx context.Context, userID string) error
}

// Config holds the lockout thresholds.
type Config struct {
	MaxAttempts int
	Duration    time.Duration
}

// Manager applies the lockout policy against a durable store.
type Manager struct {
	store  Store
	config Config
}

// New creates a lockout [Manager].
func New(store Store, cfg Config) *Manager {
	return &Manager{store: store, config: cfg}
}

// RecordFailure durably counts one failed attempt; the store sets the lock
// timestamp when the threshold is reached.
func (m *Manager) RecordFailure(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.IncrementFailedAttempts(ctx, userID, m.config.MaxAttempts, m.config.Duration)
}

// Reset zeroes the counter and clears the lock, after successful login or
// an administrative unlock.
func (m *Manager) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.ResetFailedAttempts(ctx, userID)
}
