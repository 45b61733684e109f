package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hostelops/authcore/counterstore"
	"github.com/hostelops/authcore/internal/blocklist"
	"github.com/hostelops/authcore/internal/lockout"
	"github.com/hostelops/authcore/password"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config   Config
	counters counterstore.Store
	users    UserStore
	hasher   PasswordHasher
	risk     RiskHook
	log      *zap.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCounterStore describes the withcounterstore operation and its observable behavior.
//
// WithCounterStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCounterStore(store counterstore.Store) *Builder {
	b.counters = store
	return b
}

// WithRedis is shorthand for WithCounterStore(counterstore.NewRedis(client)).
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.counters = counterstore.NewRedis(client)
	return b
}

// WithUserStore describes the withuserstore operation and its observable behavior.
//
// WithUserStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithPasswordHasher describes the withpasswordhasher operation and its observable behavior.
//
// WithPasswordHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithRiskHook installs an optional pre-authentication risk check.
//
// WithRiskHook does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRiskHook(hook RiskHook) *Builder {
	b.risk = hook
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.counters == nil {
		return nil, errors.New("counter store is required")
	}
	if b.users == nil {
		return nil, errors.New("user store is required")
	}

	hasher := b.hasher
	if hasher == nil {
		bc, err := password.NewBcrypt(password.Config{})
		if err != nil {
			return nil, err
		}
		hasher = bc
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	bl := blocklist.New(b.counters, blocklist.Config{
		Window:             b.config.Blocklist.Window,
		IPMaxAttempts:      b.config.Blocklist.IPMaxAttempts,
		UserMaxAttempts:    b.config.Blocklist.UserMaxAttempts,
		BlockDuration:      b.config.Blocklist.BlockDuration,
		StoreTimeout:       b.config.Blocklist.StoreTimeout,
		FailClosed:         b.config.Blocklist.OnStoreError == FailClosed,
		WhitelistIPs:       b.config.Whitelist.IPs,
		WhitelistUsernames: b.config.Whitelist.Usernames,
	}, log)

	lo := lockout.New(b.users, lockout.Config{
		MaxAttempts: b.config.Lockout.MaxAttempts,
		Duration:    b.config.Lockout.Duration,
	})

	whitelistIPs := make(map[string]struct{}, len(b.config.Whitelist.IPs))
	for _, ip := range b.config.Whitelist.IPs {
		whitelistIPs[ip] = struct{}{}
	}
	whitelistUsers := make(map[string]struct{}, len(b.config.Whitelist.Usernames))
	for _, u := range b.config.Whitelist.Usernames {
		whitelistUsers[u] = struct{}{}
	}

	b.built = true
	return &Engine{
		config:    b.config,
		users:     b.users,
		hasher:    hasher,
		blocklist: bl,
		lockout:   lo,
		totp:      newTOTPManager(b.config.TOTP),
		risk:      b.risk,
		metrics:   newMetrics(),
		log:       log,

		whitelistIPs:   whitelistIPs,
		whitelistUsers: whitelistUsers,

		now: time.Now,
	}, nil
}
