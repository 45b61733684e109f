package authcore

import (
	"fmt"
	"strings"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Blocklist BlocklistConfig
	Lockout   LockoutConfig
	TOTP      TOTPConfig
	Whitelist WhitelistConfig
}

/*
====================================
BLOCKLIST CONFIG
====================================
*/

// StorePolicy selects the behavior of the blocklist when the counter store
// is unreachable. This is a deliberate availability-versus-defense knob:
// the durable account lockout keeps enforcing either way.
type StorePolicy uint8

const (
	// FailOpen treats store errors as "not blocked" and logs loudly.
	FailOpen StorePolicy = iota
	// FailClosed rejects login attempts while the store is unreachable.
	FailClosed
)

// BlocklistConfig defines a public type used by authcore APIs.
//
// BlocklistConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BlocklistConfig struct {
	// Window is the fixed failure-counting window. A counter created on
	// first failure expires Window later regardless of later increments.
	Window time.Duration
	// IPMaxAttempts is the per-IP failure budget inside one window. The
	// attempt after the budget (count > max) trips the block flag.
	IPMaxAttempts int
	// UserMaxAttempts is the per-username failure budget inside one window.
	UserMaxAttempts int
	// BlockDuration is the TTL of a tripped block flag. It is independent
	// of Window: the flag outlives the counter that tripped it.
	BlockDuration time.Duration
	// StoreTimeout bounds every counter store round trip. Tens of
	// milliseconds is expected; a timeout follows OnStoreError.
	StoreTimeout time.Duration
	// OnStoreError selects fail-open or fail-closed on store failure.
	OnStoreError StorePolicy
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authcore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// MaxAttempts is the durable failed-attempt threshold at which the
	// account lock timestamp is set.
	MaxAttempts int
	// Duration is how long a tripped lock holds. Expiry is lazy: the lock
	// simply stops comparing as "in the future".
	Duration time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig defines a public type used by authcore APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Issuer      string
	Digits      int
	Period      int    // seconds per time step
	Algorithm   string // "SHA1" (default), "SHA256", "SHA512"
	Skew        int    // accepted steps either side of now
	SecretBytes int    // raw secret length for enrollment
}

/*
====================================
WHITELIST CONFIG
====================================
*/

// WhitelistConfig holds the static exemption lists loaded at process start.
// Whitelisted IPs and usernames short-circuit the blocklist unconditionally;
// they are immutable after [Builder.Build].
type WhitelistConfig struct {
	IPs       []string
	Usernames []string
}

// DefaultConfig returns the baseline configuration. Hosts are expected to
// override thresholds; nothing in the engine falls back to these values at
// decision time.
func DefaultConfig() Config {
	return Config{
		Blocklist: BlocklistConfig{
			Window:          15 * time.Minute,
			IPMaxAttempts:   20,
			UserMaxAttempts: 5,
			BlockDuration:   30 * time.Minute,
			StoreTimeout:    50 * time.Millisecond,
			OnStoreError:    FailOpen,
		},
		Lockout: LockoutConfig{
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		TOTP: TOTPConfig{
			Issuer:      "authcore",
			Digits:      6,
			Period:      30,
			Algorithm:   "SHA1",
			Skew:        1,
			SecretBytes: 20,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Whitelist.IPs = append([]string(nil), cfg.Whitelist.IPs...)
	out.Whitelist.Usernames = append([]string(nil), cfg.Whitelist.Usernames...)
	return out
}

// Validate checks the configuration for values the engine cannot run with.
// It is called by [Builder.Build]; standalone use is fine for config linting.
func (c Config) Validate() error {
	if c.Blocklist.Window <= 0 {
		return fmt.Errorf("%w: blocklist window must be positive", ErrInvalidConfig)
	}
	if c.Blocklist.IPMaxAttempts <= 0 {
		return fmt.Errorf("%w: blocklist ip max attempts must be positive", ErrInvalidConfig)
	}
	if c.Blocklist.UserMaxAttempts <= 0 {
		return fmt.Errorf("%w: blocklist user max attempts must be positive", ErrInvalidConfig)
	}
	if c.Blocklist.BlockDuration <= 0 {
		return fmt.Errorf("%w: blocklist block duration must be positive", ErrInvalidConfig)
	}
	if c.Blocklist.StoreTimeout <= 0 {
		return fmt.Errorf("%w: blocklist store timeout must be positive", ErrInvalidConfig)
	}
	if c.Blocklist.OnStoreError != FailOpen && c.Blocklist.OnStoreError != FailClosed {
		return fmt.Errorf("%w: unknown store error policy", ErrInvalidConfig)
	}
	if c.Lockout.MaxAttempts <= 0 {
		return fmt.Errorf("%w: lockout max attempts must be positive", ErrInvalidConfig)
	}
	if c.Lockout.Duration <= 0 {
		return fmt.Errorf("%w: lockout duration must be positive", ErrInvalidConfig)
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 10 {
		return fmt.Errorf("%w: totp digits must be between 6 and 10", ErrInvalidConfig)
	}
	if c.TOTP.Period <= 0 {
		return fmt.Errorf("%w: totp period must be positive", ErrInvalidConfig)
	}
	if c.TOTP.Skew < 0 {
		return fmt.Errorf("%w: totp skew must not be negative", ErrInvalidConfig)
	}
	if c.TOTP.SecretBytes < 16 {
		return fmt.Errorf("%w: totp secret must be at least 16 bytes", ErrInvalidConfig)
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return fmt.Errorf("%w: unsupported totp algorithm %q", ErrInvalidConfig, c.TOTP.Algorithm)
	}
	return nil
}
