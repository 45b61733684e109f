package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Login runs the full decision sequence for one login attempt: blocklist
// check, user resolution, durable lockout check, password verification,
// then TOTP verification when the user has MFA enabled. On any failure the
// matching counters are updated; on full success both the blocklist and the
// lockout state are cleared.
//
// Rejections never reveal more than necessary: an unknown identifier and a
// wrong password both return [ErrInvalidCredentials], and a blocklist
// rejection does not disclose which scope tripped it — that detail is
// logged, not returned.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	if e == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	attemptID := uuid.NewString()
	log := e.log.With(
		zap.String("attempt_id", attemptID),
		zap.String("ip", req.IP),
	)

	// 1. Distributed blocklist. An error here only surfaces under the
	// FailClosed policy; it still reads as a rate-limit to the caller.
	dec, err := e.blocklist.IsBlocked(ctx, req.IP, req.Identifier)
	if err != nil {
		e.metrics.inc(MetricLoginRateLimited)
		log.Error("blocklist unavailable, failing closed", zap.Error(err))
		return AuthResult{}, ErrLoginRateLimited
	}
	if dec.Blocked {
		e.metrics.inc(MetricLoginRateLimited)
		log.Warn("login attempt blocked",
			zap.Uint8("scope", uint8(dec.Scope)))
		return AuthResult{}, ErrLoginRateLimited
	}

	// 2. Host-supplied risk check, before any credential is examined.
	if e.risk != nil && !e.risk(ctx, req) {
		e.metrics.inc(MetricLoginRateLimited)
		log.Warn("login attempt rejected by risk hook")
		return AuthResult{}, ErrLoginRateLimited
	}

	// 3. Resolve the user. Unknown identifiers count as failures so
	// username enumeration burns the same budgets as password guessing.
	user, err := e.users.GetUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.inc(MetricLoginFailure)
			if rfErr := e.blocklist.RecordFailure(ctx, req.IP, req.Identifier); rfErr != nil {
				log.Error("failure not recorded", zap.Error(rfErr))
			}
			return AuthResult{}, ErrInvalidCredentials
		}
		log.Error("user lookup failed", zap.Error(err))
		return AuthResult{}, err
	}

	// Whitelisted attempts are exempt from failure tracking on both
	// layers: never rejected for lock state, never accruing failed
	// attempts. Without this an attacker hammering a whitelisted ops
	// account could still lock it out durably.
	exempt := e.whitelisted(req.IP, req.Identifier)

	// 4. Durable lockout. This holds even when the counter store is down.
	status := e.lockStatus(user)
	if !exempt && status.Locked {
		e.metrics.inc(MetricLoginLocked)
		log.Warn("login attempt on locked account",
			zap.String("user_id", user.UserID),
			zap.Duration("remaining", status.Remaining))
		return AuthResult{}, &LockoutError{
			Remaining:      status.Remaining,
			FailedAttempts: status.FailedAttempts,
		}
	}

	// 5. Password.
	ok, err := e.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		log.Error("password verification failed", zap.Error(err))
	}
	if err != nil || !ok {
		e.metrics.inc(MetricLoginFailure)
		e.recordLoginFailure(ctx, log, req, user.UserID, exempt)
		return AuthResult{}, ErrInvalidCredentials
	}

	// 6. MFA when enrolled.
	mfaUsed := false
	if user.MFAEnabled {
		if req.OTPCode == "" {
			e.metrics.inc(MetricMFARequired)
			if !exempt {
				if lErr := e.lockout.RecordFailure(ctx, user.UserID); lErr != nil {
					log.Error("lockout failure not recorded", zap.Error(lErr))
				}
			}
			return AuthResult{}, ErrMFARequired
		}
		if !e.totp.Verify(user.MFASecret, req.OTPCode, e.now()) {
			e.metrics.inc(MetricMFAFailure)
			if !exempt {
				if lErr := e.lockout.RecordFailure(ctx, user.UserID); lErr != nil {
					log.Error("lockout failure not recorded", zap.Error(lErr))
				}
			}
			return AuthResult{}, ErrMFAInvalid
		}
		e.metrics.inc(MetricMFASuccess)
		mfaUsed = true
	}

	// 7. Success clears both layers of failure state.
	if err := e.lockout.Reset(ctx, user.UserID); err != nil {
		log.Error("lockout reset failed", zap.Error(err))
	}
	if err := e.blocklist.RecordSuccess(ctx, req.Identifier); err != nil {
		log.Error("blocklist reset failed", zap.Error(err))
	}

	e.metrics.inc(MetricLoginSuccess)
	return AuthResult{
		UserID:     user.UserID,
		Identifier: user.Identifier,
		MFAUsed:    mfaUsed,
	}, nil
}

// recordLoginFailure updates both failure-tracking layers after a bad
// password: the durable per-user lockout counter and the windowed
// blocklist counters. Exempt (whitelisted) attempts skip the durable
// layer so they can never lock the account.
func (e *Engine) recordLoginFailure(ctx context.Context, log *zap.Logger, req LoginRequest, userID string, exempt bool) {
	if !exempt {
		if err := e.lockout.RecordFailure(ctx, userID); err != nil {
			log.Error("lockout failure not recorded", zap.Error(err))
		}
	}
	if err := e.blocklist.RecordFailure(ctx, req.IP, req.Identifier); err != nil {
		log.Error("blocklist failure not recorded", zap.Error(err))
	}
}
