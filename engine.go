package authcore

import (
	"time"

	"go.uber.org/zap"

	"github.com/hostelops/authcore/internal/blocklist"
	"github.com/hostelops/authcore/internal/lockout"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// All methods are safe for concurrent use once [Builder.Build] returns.
type Engine struct {
	config    Config
	users     UserStore
	hasher    PasswordHasher
	blocklist *blocklist.Limiter
	lockout   *lockout.Manager
	totp      *totpManager
	risk      RiskHook
	metrics   *Metrics
	log       *zap.Logger

	whitelistIPs   map[string]struct{}
	whitelistUsers map[string]struct{}

	now func() time.Time
}

// whitelisted reports whether the attempt is exempt from failure tracking:
// a whitelisted IP or identifier bypasses both the windowed blocklist and
// the durable lockout layer.
func (e *Engine) whitelisted(ip, identifier string) bool {
	if _, ok := e.whitelistIPs[ip]; ok {
		return true
	}
	_, ok := e.whitelistUsers[identifier]
	return ok
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}
