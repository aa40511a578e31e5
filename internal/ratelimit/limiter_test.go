package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/talenthub/competency-api/internal/config"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	limiter := New(NewLocalStore())
	rule := config.RateRule{Limit: 5, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Check(ctx, "1.2.3.4", "login", rule)
		if err != nil {
			t.Fatalf("Check returned error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if want := int64(5 - i - 1); d.Remaining != want {
			t.Fatalf("request %d remaining = %d, want %d", i+1, d.Remaining, want)
		}
	}

	d, err := limiter.Check(ctx, "1.2.3.4", "login", rule)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if d.Allowed {
		t.Fatal("request over the limit was allowed")
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want positive", d.RetryAfter)
	}
}

func TestLimiterIsolatesIdentityAndRoute(t *testing.T) {
	limiter := New(NewLocalStore())
	rule := config.RateRule{Limit: 1, Window: time.Minute}
	ctx := context.Background()

	if d, _ := limiter.Check(ctx, "1.2.3.4", "login", rule); !d.Allowed {
		t.Fatal("first request denied")
	}
	if d, _ := limiter.Check(ctx, "1.2.3.4", "login", rule); d.Allowed {
		t.Fatal("second request from same caller allowed")
	}
	// A different caller and a different route each get their own window.
	if d, _ := limiter.Check(ctx, "5.6.7.8", "login", rule); !d.Allowed {
		t.Fatal("other caller was denied")
	}
	if d, _ := limiter.Check(ctx, "1.2.3.4", "verify_request", rule); !d.Allowed {
		t.Fatal("other route was denied")
	}
}

func TestLocalStoreWindowReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	store := NewLocalStore()
	store.now = func() time.Time { return now }
	limiter := New(store)
	rule := config.RateRule{Limit: 2, Window: time.Minute}
	ctx := context.Background()

	limiter.Check(ctx, "ip", "login", rule)
	limiter.Check(ctx, "ip", "login", rule)
	if d, _ := limiter.Check(ctx, "ip", "login", rule); d.Allowed {
		t.Fatal("third request in window allowed")
	}

	// Advance past the window; the counter must start fresh.
	now = now.Add(time.Minute + time.Second)
	d, err := limiter.Check(ctx, "ip", "login", rule)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !d.Allowed {
		t.Fatal("request after window reset denied")
	}
	if d.Remaining != 1 {
		t.Fatalf("remaining = %d, want 1", d.Remaining)
	}
}

func TestLocalStoreConcurrentIncrements(t *testing.T) {
	store := NewLocalStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := store.Incr(ctx, "shared", time.Minute); err != nil {
				t.Errorf("Incr returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	count, _, err := store.Incr(ctx, "shared", time.Minute)
	if err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}
	if count != goroutines+1 {
		t.Fatalf("count = %d, want %d (undercounted under concurrency)", count, goroutines+1)
	}
}
