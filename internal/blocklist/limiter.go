// Package blocklist implements the sliding-window brute-force defense on
// top of the shared counter store: per-IP and per-username failure counters
// with fixed TTL windows, block flags with their own TTL, a static
// whitelist, and an explicit fail-open/fail-closed policy for store outages.
package blocklist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hostelops/authcore/counterstore"
)

const (
	ipCounterPrefix   = "bf:ip:"
	userCounterPrefix = "bf:user:"
	ipFlagPrefix      = "bfb:ip:"
	userFlagPrefix    = "bfb:user:"
)

// Scope identifies which counter tripped a block.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopeIP
	ScopeUser
)

// Decision is the outcome of a block check.
type Decision struct {
	Blocked bool
	Scope   Scope
}

// Config holds blocklist tuning parameters. Whitelist sets are normalized
// once at construction and immutable afterwards.
type Config struct {
	Window          time.Duration
	IPMaxAttempts   int
	UserMaxAttempts int
	BlockDuration   time.Duration
	StoreTimeout    time.Duration
	FailClosed      bool

	WhitelistIPs       []string
	WhitelistUsernames []string
}

// Limiter tracks login failures per IP and per username in the counter
// store and answers block checks. It is safe for concurrent use.
type Limiter struct {
	store  counterstore.Store
	config Config
	log    *zap.Logger

	whitelistIPs   map[string]struct{}
	whitelistUsers map[string]struct{}
}

// New creates a [Limiter] on the given store.
func New(store counterstore.Store, cfg Config, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}

	l := &Limiter{
		store:          store,
		config:         cfg,
		log:            log,
		whitelistIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		whitelistUsers: make(map[string]struct{}, len(cfg.WhitelistUsernames)),
	}
	for _, ip := range cfg.WhitelistIPs {
		l.whitelistIPs[ip] = struct{}{}
	}
	for _, u := range cfg.WhitelistUsernames {
		l.whitelistUsers[u] = struct{}{}
	}
	return l
}

// RecordFailure counts one failed attempt against the IP and, when present,
// the username. Each increment runs the compound increment-and-flag store
// operation, so crossing a budget trips the matching block flag atomically.
// Store errors follow the configured failure policy: fail-open logs and
// swallows, fail-closed returns the error.
func (l *Limiter) RecordFailure(ctx context.Context, ip, username string) error {
	if ip != "" {
		if err := l.bump(ctx, ipCounterPrefix+ip, ipFlagPrefix+ip, int64(l.config.IPMaxAttempts)); err != nil {
			if l.config.FailClosed {
				return err
			}
			l.log.Error("blocklist failure not recorded, failing open",
				zap.String("scope", "ip"),
				zap.Error(err))
		}
	}

	if username != "" {
		if err := l.bump(ctx, userCounterPrefix+username, userFlagPrefix+username, int64(l.config.UserMaxAttempts)); err != nil {
			if l.config.FailClosed {
				return err
			}
			l.log.Error("blocklist failure not recorded, failing open",
				zap.String("scope", "user"),
				zap.Error(err))
		}
	}

	return nil
}

// RecordSuccess clears the username's counter and block flag. IP state is
// left alone: one good login from an address must not launder an ongoing
// distributed attack through it.
func (l *Limiter) RecordSuccess(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, l.config.StoreTimeout)
	defer cancel()

	if err := l.store.Delete(opCtx, userCounterPrefix+username, userFlagPrefix+username); err != nil {
		if l.config.FailClosed {
			return err
		}
		l.log.Error("blocklist success not recorded, failing open", zap.Error(err))
	}
	return nil
}

// IsBlocked checks the IP flag first, then the username flag. Whitelisted
// identifiers short-circuit to not blocked before any store round trip.
// Under fail-open a store outage reads as not blocked; under fail-closed the
// error propagates and the caller rejects the attempt.
func (l *Limiter) IsBlocked(ctx context.Context, ip, username string) (Decision, error) {
	if _, ok := l.whitelistIPs[ip]; ok {
		return Decision{}, nil
	}
	if _, ok := l.whitelistUsers[username]; ok {
		return Decision{}, nil
	}

	if ip != "" {
		blocked, err := l.flagged(ctx, ipFlagPrefix+ip)
		if err != nil {
			if l.config.FailClosed {
				return Decision{}, err
			}
			l.log.Error("blocklist check failed, failing open",
				zap.String("scope", "ip"),
				zap.Error(err))
		} else if blocked {
			return Decision{Blocked: true, Scope: ScopeIP}, nil
		}
	}

	if username != "" {
		blocked, err := l.flagged(ctx, userFlagPrefix+username)
		if err != nil {
			if l.config.FailClosed {
				return Decision{}, err
			}
			l.log.Error("blocklist check failed, failing open",
				zap.String("scope", "user"),
				zap.Error(err))
		} else if blocked {
			return Decision{Blocked: true, Scope: ScopeUser}, nil
		}
	}

	return Decision{}, nil
}

func (l *Limiter) bump(ctx context.Context, counterKey, flagKey string, max int64) error {
	opCtx, cancel := context.WithTimeout(ctx, l.config.StoreTimeout)
	defer cancel()

	count, flagged, err := l.store.IncrementAndFlag(opCtx, counterKey, l.config.Window, max, flagKey, l.config.BlockDuration)
	if err != nil {
		return err
	}
	if flagged {
		l.log.Warn("blocklist threshold crossed",
			zap.String("key", counterKey),
			zap.Int64("count", count),
			zap.Int64("max", max))
	}
	return nil
}

func (l *Limiter) flagged(ctx context.Context, flagKey string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, l.config.StoreTimeout)
	defer cancel()
	return l.store.FlagExists(opCtx, flagKey)
}
