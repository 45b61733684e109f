package authcore

import (
	"context"

	"github.com/hostelops/authcore/internal/blocklist"
)

// RecordFailure counts one failed login attempt against the IP and, when
// username is non-empty, the username. Crossing a configured budget trips
// the matching block flag atomically with the increment.
//
// RecordFailure may return an error only under the FailClosed store policy.
func (e *Engine) RecordFailure(ctx context.Context, ip, username string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.blocklist.RecordFailure(ctx, ip, username)
}

// RecordSuccess clears the username's failure counter and block flag after
// a successful login.
//
// RecordSuccess may return an error only under the FailClosed store policy.
func (e *Engine) RecordSuccess(ctx context.Context, username string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.blocklist.RecordSuccess(ctx, username)
}

// IsBlocked reports whether the attempt is currently blocked, checking the
// IP flag before the username flag. Whitelisted identifiers are never
// blocked. Under the FailOpen policy a store outage reads as not blocked.
func (e *Engine) IsBlocked(ctx context.Context, ip, username string) (BlockDecision, error) {
	if e == nil {
		return BlockDecision{}, ErrEngineNotReady
	}

	dec, err := e.blocklist.IsBlocked(ctx, ip, username)
	if err != nil {
		return BlockDecision{}, err
	}
	return blockDecisionFrom(dec), nil
}

func blockDecisionFrom(dec blocklist.Decision) BlockDecision {
	out := BlockDecision{Blocked: dec.Blocked}
	switch dec.Scope {
	case blocklist.ScopeIP:
		out.Reason = BlockReasonIP
	case blocklist.ScopeUser:
		out.Reason = BlockReasonUser
	}
	return out
}
