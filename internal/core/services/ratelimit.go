package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ProviderLimiter throttles requests to one provider.
// It uses a token bucket plus a pause window set after 429 responses.
type ProviderLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewProviderLimiter creates a limiter allowing requestsPerSecond with the given burst.
func NewProviderLimiter(requestsPerSecond float64, burst int) *ProviderLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ProviderLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any pause set by Pause.
func (l *ProviderLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Pause holds every request to this provider for d.
// A shorter pause never cuts an existing one short.
func (l *ProviderLimiter) Pause(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until := time.Now().Add(d)
	if until.After(l.retryAt) {
		l.retryAt = until
	}
}
