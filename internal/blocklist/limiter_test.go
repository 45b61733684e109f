package blocklist

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hostelops/authcore/counterstore"
)

func testConfig() Config {
	return Config{
		Window:          time.Minute,
		IPMaxAttempts:   5,
		UserMaxAttempts: 3,
		BlockDuration:   time.Hour,
		StoreTimeout:    time.Second,
	}
}

func TestIPBlocksAfterBudgetExceeded(t *testing.T) {
	l := New(counterstore.NewMemory(), testConfig(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.RecordFailure(ctx, "10.0.0.1", ""); err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
		dec, err := l.IsBlocked(ctx, "10.0.0.1", "")
		if err != nil {
			t.Fatalf("check %d: %v", i+1, err)
		}
		if dec.Blocked {
			t.Fatalf("blocked after %d failures, budget is 5", i+1)
		}
	}

	// The sixth failure exceeds the budget and trips the flag.
	if err := l.RecordFailure(ctx, "10.0.0.1", ""); err != nil {
		t.Fatalf("sixth failure: %v", err)
	}
	dec, err := l.IsBlocked(ctx, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !dec.Blocked || dec.Scope != ScopeIP {
		t.Fatalf("expected IP block, got %+v", dec)
	}
}

func TestUserScopeBlocksIndependently(t *testing.T) {
	l := New(counterstore.NewMemory(), testConfig(), zap.NewNop())
	ctx := context.Background()

	// Failures spread across IPs still converge on one username.
	ips := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}
	for i := 0; i < 4; i++ {
		if err := l.RecordFailure(ctx, ips[i], "alice"); err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
	}

	dec, err := l.IsBlocked(ctx, "10.9.9.9", "alice")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !dec.Blocked || dec.Scope != ScopeUser {
		t.Fatalf("expected user block, got %+v", dec)
	}

	// A different username from a fresh IP is untouched.
	dec, err = l.IsBlocked(ctx, "10.9.9.9", "bob")
	if err != nil || dec.Blocked {
		t.Fatalf("bob should not be blocked, got %+v err=%v", dec, err)
	}
}

func TestWhitelistedIPNeverBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistIPs = []string{"192.168.1.10"}
	l := New(counterstore.NewMemory(), cfg, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if err := l.RecordFailure(ctx, "192.168.1.10", ""); err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
	}

	dec, err := l.IsBlocked(ctx, "192.168.1.10", "")
	if err != nil || dec.Blocked {
		t.Fatalf("whitelisted ip blocked: %+v err=%v", dec, err)
	}
}

func TestWhitelistedUsernameNeverBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistUsernames = []string{"ops-probe"}
	l := New(counterstore.NewMemory(), cfg, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if err := l.RecordFailure(ctx, "10.0.0.1", "ops-probe"); err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
	}

	dec, err := l.IsBlocked(ctx, "172.16.0.1", "ops-probe")
	if err != nil || dec.Blocked {
		t.Fatalf("whitelisted username blocked: %+v err=%v", dec, err)
	}
}

func TestSuccessClearsUserScopeOnly(t *testing.T) {
	l := New(counterstore.NewMemory(), testConfig(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := l.RecordFailure(ctx, "10.0.0.1", "alice"); err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
	}

	if err := l.RecordSuccess(ctx, "alice"); err != nil {
		t.Fatalf("success: %v", err)
	}

	// User flag is gone, the IP flag (6 > 5) remains.
	dec, err := l.IsBlocked(ctx, "10.99.0.1", "alice")
	if err != nil || dec.Blocked {
		t.Fatalf("user scope should be clear, got %+v err=%v", dec, err)
	}
	dec, err = l.IsBlocked(ctx, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !dec.Blocked || dec.Scope != ScopeIP {
		t.Fatalf("ip scope should remain blocked, got %+v", dec)
	}
}

// brokenStore fails every operation, standing in for an unreachable backend.
type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, counterstore.ErrUnavailable
}

func (brokenStore) IncrementAndFlag(context.Context, string, time.Duration, int64, string, time.Duration) (int64, bool, error) {
	return 0, false, counterstore.ErrUnavailable
}

func (brokenStore) SetFlag(context.Context, string, time.Duration) error {
	return counterstore.ErrUnavailable
}

func (brokenStore) FlagExists(context.Context, string) (bool, error) {
	return false, counterstore.ErrUnavailable
}

func (brokenStore) Delete(context.Context, ...string) error {
	return counterstore.ErrUnavailable
}

func TestFailOpenSwallowsStoreErrors(t *testing.T) {
	l := New(brokenStore{}, testConfig(), zap.NewNop())
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "10.0.0.1", "alice"); err != nil {
		t.Fatalf("fail-open RecordFailure returned error: %v", err)
	}
	dec, err := l.IsBlocked(ctx, "10.0.0.1", "alice")
	if err != nil {
		t.Fatalf("fail-open IsBlocked returned error: %v", err)
	}
	if dec.Blocked {
		t.Fatalf("fail-open must read as not blocked, got %+v", dec)
	}
	if err := l.RecordSuccess(ctx, "alice"); err != nil {
		t.Fatalf("fail-open RecordSuccess returned error: %v", err)
	}
}

func TestFailClosedPropagatesStoreErrors(t *testing.T) {
	cfg := testConfig()
	cfg.FailClosed = true
	l := New(brokenStore{}, cfg, zap.NewNop())
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "10.0.0.1", "alice"); !errors.Is(err, counterstore.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := l.IsBlocked(ctx, "10.0.0.1", "alice"); !errors.Is(err, counterstore.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
