package authcore

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrLoginRateLimited is an exported constant or variable used by the authentication engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrAccountLocked is an exported constant or variable used by the authentication engine.
	ErrAccountLocked = errors.New("account locked")
	// ErrMFARequired is an exported constant or variable used by the authentication engine.
	ErrMFARequired = errors.New("mfa code required")
	// ErrMFAInvalid is an exported constant or variable used by the authentication engine.
	ErrMFAInvalid = errors.New("invalid mfa code")
	// ErrStoreUnavailable is an exported constant or variable used by the authentication engine.
	// It is internal to the core and its collaborators; it must never be
	// surfaced to an end user verbatim.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrInvalidConfig is an exported constant or variable used by the authentication engine.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LockoutError is the rejection returned when a login hits a locked account.
// It unwraps to [ErrAccountLocked] so errors.Is keeps working, and carries
// the remaining lock duration for the caller's response.
type LockoutError struct {
	Remaining      time.Duration
	FailedAttempts int
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.Remaining.Round(time.Second))
}

// Unwrap allows errors.Is(err, ErrAccountLocked).
func (e *LockoutError) Unwrap() error {
	return ErrAccountLocked
}
