package authcore

import (
	"context"

	"github.com/hostelops/authcore/internal/lockout"
)

// RecordFailedAttempt durably increments the user's failed-attempt counter.
// The user store sets the lock timestamp in the same atomic update when the
// configured threshold is reached.
//
// RecordFailedAttempt may return an error when the user store fails.
func (e *Engine) RecordFailedAttempt(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.lockout.RecordFailure(ctx, userID)
}

// ResetFailedAttempts zeroes the user's failure counter and clears any lock.
// Used after successful login and for administrative unlocks.
//
// ResetFailedAttempts may return an error when the user store fails.
func (e *Engine) ResetFailedAttempts(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.lockout.Reset(ctx, userID)
}

// AccountLockStatus reads the user's durable lockout state and derives
// whether the account counts as locked right now. There is no stored
// "locked" flag; the timestamp comparison is the whole transition.
//
// AccountLockStatus may return an error when the user store fails or the user does not exist.
func (e *Engine) AccountLockStatus(ctx context.Context, userID string) (LockStatus, error) {
	if e == nil {
		return LockStatus{}, ErrEngineNotReady
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		return LockStatus{}, err
	}

	return e.lockStatus(user), nil
}

func (e *Engine) lockStatus(user UserRecord) LockStatus {
	state := lockout.State{
		FailedAttempts: user.FailedAttempts,
		LockedUntil:    user.LockedUntil,
	}
	now := e.now()
	return LockStatus{
		Locked:         lockout.IsLocked(state, now),
		Remaining:      lockout.Remaining(state, now),
		FailedAttempts: user.FailedAttempts,
	}
}
