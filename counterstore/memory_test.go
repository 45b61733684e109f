package counterstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryIncrementAndWindowExpiry(t *testing.T) {
	store := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 4; want++ {
		got, err := store.Increment(ctx, "c:k", time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("count = %d, want %d", got, want)
		}
	}

	// Past the window the counter restarts from scratch.
	now = now.Add(61 * time.Second)
	got, err := store.Increment(ctx, "c:k", time.Minute)
	if err != nil {
		t.Fatalf("increment after expiry: %v", err)
	}
	if got != 1 {
		t.Fatalf("count after expiry = %d, want 1", got)
	}
}

func TestMemoryFlagLifecycle(t *testing.T) {
	store := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.SetFlag(ctx, "b:k", 30*time.Second); err != nil {
		t.Fatalf("setflag: %v", err)
	}

	exists, err := store.FlagExists(ctx, "b:k")
	if err != nil || !exists {
		t.Fatalf("flag should exist, exists=%v err=%v", exists, err)
	}

	now = now.Add(31 * time.Second)
	exists, err = store.FlagExists(ctx, "b:k")
	if err != nil || exists {
		t.Fatalf("flag should have expired, exists=%v err=%v", exists, err)
	}
}

func TestMemoryIncrementAndFlagThreshold(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	const threshold = 3
	for i := 1; i <= threshold; i++ {
		_, flagged, err := store.IncrementAndFlag(ctx, "c:ip", time.Minute, threshold, "b:ip", time.Minute)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if flagged {
			t.Fatalf("attempt %d: flag tripped inside budget", i)
		}
	}

	count, flagged, err := store.IncrementAndFlag(ctx, "c:ip", time.Minute, threshold, "b:ip", time.Minute)
	if err != nil {
		t.Fatalf("threshold attempt: %v", err)
	}
	if !flagged || count != threshold+1 {
		t.Fatalf("expected flag at %d, got count=%d flagged=%v", threshold+1, count, flagged)
	}

	exists, _ := store.FlagExists(ctx, "b:ip")
	if !exists {
		t.Fatal("flag missing after trip")
	}
}

func TestMemoryConcurrentIncrementsLoseNothing(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	const n = 500
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Increment(ctx, "c:hot", time.Minute); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := store.Increment(ctx, "c:hot", time.Minute)
	if err != nil {
		t.Fatalf("final increment: %v", err)
	}
	if count != n+1 {
		t.Fatalf("final count = %d, want %d", count, n+1)
	}
}
