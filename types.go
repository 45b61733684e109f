package authcore

import (
	"context"
	"time"
)

// UserRecord is the durable user view this core needs to run a login
// decision. The host application's user table typically carries much more;
// only these fields participate in authentication.
//
// LockedUntil uses the zero time.Time to mean "not locked". A user is locked
// iff LockedUntil is set and in the future; there is no explicit unlock
// transition.
type UserRecord struct {
	UserID         string
	Identifier     string
	PasswordHash   string
	MFAEnabled     bool
	MFASecret      string // base32, empty unless MFAEnabled
	FailedAttempts int
	LockedUntil    time.Time
}

// UserStore is the durable user record port. Implementations must provide
// atomic increment semantics for IncrementFailedAttempts: the counter bump
// and the conditional lock timestamp must be applied in a single row-level
// operation, never read-then-write from the application.
//
// Lookup methods return [ErrUserNotFound] (possibly wrapped) for missing
// users and reserve other errors for store failures.
type UserStore interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)

	// IncrementFailedAttempts durably increments the user's failure counter
	// and, when the post-increment value reaches lockThreshold, sets the
	// lock expiry to now+lockDuration in the same atomic update.
	IncrementFailedAttempts(ctx context.Context, userID string, lockThreshold int, lockDuration time.Duration) error

	// ResetFailedAttempts zeroes the failure counter and clears the lock.
	ResetFailedAttempts(ctx context.Context, userID string) error
}

// PasswordHasher is the credential verification port. Verify returns
// (false, nil) on mismatch; errors are reserved for malformed hashes or
// backend failure.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// RiskHook is an optional pre-authentication assessment point for hosts
// that score attempts by geography, device fingerprint, or similar signals.
// Returning false rejects the attempt as rate-limited before any credential
// is examined. This core ships no scoring of its own.
type RiskHook func(ctx context.Context, req LoginRequest) bool

// BlockReason identifies which scope tripped the blocklist.
type BlockReason string

const (
	// BlockReasonIP is an exported constant or variable used by the authentication engine.
	BlockReasonIP BlockReason = "ip"
	// BlockReasonUser is an exported constant or variable used by the authentication engine.
	BlockReasonUser BlockReason = "user"
)

// BlockDecision is returned by [Engine.IsBlocked]. Reason is set only when
// Blocked is true and names the first scope that matched.
type BlockDecision struct {
	Blocked bool
	Reason  BlockReason
}

// LockStatus is returned by [Engine.AccountLockStatus]. Remaining is zero
// unless Locked is true.
type LockStatus struct {
	Locked         bool
	Remaining      time.Duration
	FailedAttempts int
}

// LoginRequest carries one inbound login attempt. OTPCode may be empty; it
// is required only when the resolved user has MFA enabled.
type LoginRequest struct {
	IP         string
	Identifier string
	Password   string
	OTPCode    string
}

// AuthResult is returned by [Engine.Login] on full success. It deliberately
// carries no token material; session issuance happens outside this core.
type AuthResult struct {
	UserID     string
	Identifier string
	MFAUsed    bool
}
