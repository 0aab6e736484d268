package qbo

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// QBORequestsPerMinute is the published per-realm throttle.
	QBORequestsPerMinute = 500

	// ProactiveRate is the proactive throttle rate (~5 req/sec = 300/min).
	ProactiveRate = 5.0

	// DefaultHold is the pause applied after a throttled response that
	// carries no Retry-After header.
	DefaultHold = 60 * time.Second

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the QBO API.
// A token bucket spaces requests proactively; a 429 response installs a
// hold that every caller respects until it expires.
type RateLimiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	holdUntil time.Time
}

// NewRateLimiter creates a new rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Check token bucket (proactive throttling)
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	// 2. Respect any hold installed by an earlier 429 (reactive)
	r.mu.Lock()
	hold := r.holdUntil
	r.mu.Unlock()

	if time.Now().Before(hold) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(hold)):
		}
	}

	return nil
}

// AbsorbRetryAfter installs a hold from a throttled response so subsequent
// requests wait instead of piling further 429s onto the same quota.
func (r *RateLimiter) AbsorbRetryAfter(resp *http.Response) {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}

	hold := DefaultHold
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			hold = time.Duration(seconds) * time.Second
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(hold)
	if until.After(r.holdUntil) {
		r.holdUntil = until
	}
}

// HoldUntil returns the time the current hold expires, zero when none.
func (r *RateLimiter) HoldUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holdUntil
}
