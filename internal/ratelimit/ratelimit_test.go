package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jwillemsen/baanradar/internal/model"
)

func TestWait_SameBroker_EnforcesMinDelay(t *testing.T) {
	limiter := NewBrokerRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "Yacht"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "Yacht"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentBrokers_NoCrossBlocking(t *testing.T) {
	limiter := NewBrokerRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	// Call for Yacht.
	if err := limiter.Wait(ctx, "Yacht"); err != nil {
		t.Fatalf("Yacht wait: %v", err)
	}

	// Immediately call for JobBird — should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "JobBird"); err != nil {
		t.Fatalf("JobBird wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected JobBird wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewBrokerRateLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "Yacht"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// Cancel the context before the wait completes.
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := limiter.Wait(ctx, "Yacht")
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mock for RateLimitedScraper test ---

type recordingScraper struct {
	called bool
}

func (s *recordingScraper) Broker() string { return "Yacht" }

func (s *recordingScraper) FetchPostings(_ context.Context) ([]model.Posting, error) {
	s.called = true
	return nil, nil
}

func TestRateLimitedScraper_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewBrokerRateLimiter(100 * time.Millisecond)
	inner := &recordingScraper{}
	scraper := NewRateLimitedScraper(inner, limiter)
	ctx := context.Background()

	// First call — seeds limiter, then delegates.
	if _, err := scraper.FetchPostings(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner scraper was not called on first fetch")
	}

	// Reset.
	inner.called = false

	// Second call — should wait for the rate limiter.
	start := time.Now()
	if _, err := scraper.FetchPostings(ctx); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if !inner.called {
		t.Fatal("inner scraper was not called on second fetch")
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}
