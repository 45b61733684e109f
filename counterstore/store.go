// Package counterstore provides the shared atomic counter/flag store behind
// the brute-force blocklist: TTL-bearing failure counters and block flags
// that must stay consistent across every process instance handling logins.
//
// Two implementations ship here. [Redis] is the production store; its
// compound increment-and-flag runs as one server-side Lua script, so the
// threshold decision cannot race between concurrent callers. [Memory] is a
// single-process store for tests and embedded setups; it serializes the
// same sequence under one mutex.
package counterstore

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the backing store could not be reached. Callers
// decide whether that fails open or closed; this package only reports it.
var ErrUnavailable = errors.New("counter store unavailable")

// Store is the narrow contract the blocklist consumes. Per-key operations
// must be linearizable with respect to each other: an increment is visible
// to the very next read of that key. No ordering is required across keys.
type Store interface {
	// Increment atomically bumps the counter at key, creating it with the
	// given TTL when absent, and returns the post-increment value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// IncrementAndFlag is the compound form: it performs Increment and, when
	// the post-increment count exceeds threshold, sets flagKey with flagTTL
	// in the same atomic step. It returns the count and whether the flag was
	// set by this call.
	IncrementAndFlag(ctx context.Context, key string, ttl time.Duration, threshold int64, flagKey string, flagTTL time.Duration) (int64, bool, error)

	// SetFlag sets a boolean-presence flag with the given TTL.
	SetFlag(ctx context.Context, key string, ttl time.Duration) error

	// FlagExists reports whether the flag is currently present.
	FlagExists(ctx context.Context, key string) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
