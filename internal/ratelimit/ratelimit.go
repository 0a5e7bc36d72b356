package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jwillemsen/baanradar/internal/model"
)

// BrokerRateLimiter enforces a minimum delay between requests to the same broker.
type BrokerRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: broker name
	minDelay time.Duration        // delay between requests to same broker
}

// NewBrokerRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same broker.
func NewBrokerRateLimiter(minDelay time.Duration) *BrokerRateLimiter {
	return &BrokerRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the given broker.
// Returns an error if the context is cancelled while waiting.
func (r *BrokerRateLimiter) Wait(ctx context.Context, broker string) error {
	r.mu.Lock()
	last, ok := r.lastCall[broker]
	now := time.Now()

	if !ok {
		// First request for this broker — no wait needed.
		r.lastCall[broker] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		// Enough time has passed — proceed immediately.
		r.lastCall[broker] = now
		r.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", broker, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[broker] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedScraper is a decorator that enforces broker-level rate limiting
// before delegating to the wrapped BrokerScraper.
type RateLimitedScraper struct {
	inner   model.BrokerScraper
	limiter *BrokerRateLimiter
}

// NewRateLimitedScraper wraps a BrokerScraper with broker-level rate limiting.
// Scrapers targeting the same broker should share the same limiter instance.
func NewRateLimitedScraper(inner model.BrokerScraper, limiter *BrokerRateLimiter) *RateLimitedScraper {
	return &RateLimitedScraper{
		inner:   inner,
		limiter: limiter,
	}
}

// Broker returns the wrapped scraper's broker name.
func (s *RateLimitedScraper) Broker() string {
	return s.inner.Broker()
}

// FetchPostings waits for the rate limiter to allow a request, then delegates
// to the wrapped scraper.
func (s *RateLimitedScraper) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if err := s.limiter.Wait(ctx, s.inner.Broker()); err != nil {
		return nil, err
	}
	return s.inner.FetchPostings(ctx)
}
