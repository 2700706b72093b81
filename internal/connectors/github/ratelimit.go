package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Authenticated requests get 5000/hour. The token bucket throttles well
// under that so a long deploy session never exhausts the quota, and the
// reactive check parks the client when the reported remaining count
// drops below the buffer.
const (
	authenticatedQuota = 5000
	throttleRate       = 1.2 // requests per second, ~4320/hour
	remainingBuffer    = 100

	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset"
)

// RateLimiter paces requests to the GitHub API. It combines a local
// token bucket with the quota headers GitHub returns on every response.
type RateLimiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	remaining int
	limit     int
	resetAt   time.Time
}

// NewRateLimiter starts a limiter that assumes a full quota until the
// first response reports otherwise.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket:    rate.NewLimiter(rate.Limit(throttleRate), 1),
		remaining: authenticatedQuota,
		limit:     authenticatedQuota,
	}
}

// Wait blocks until a request may be sent. When the reported remaining
// quota is below the buffer it sleeps through to the reset time.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	low := r.remaining < remainingBuffer
	resetAt := r.resetAt
	r.mu.Unlock()

	if low && time.Now().Before(resetAt) {
		timer := time.NewTimer(time.Until(resetAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// UpdateFromResponse records the quota headers from a GitHub response.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := headerInt(resp, HeaderRateRemaining); ok {
		r.remaining = n
	}
	if n, ok := headerInt(resp, HeaderRateLimit); ok {
		r.limit = n
	}
	if raw := resp.Header.Get(HeaderRateReset); raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			r.resetAt = time.Unix(unix, 0)
		}
	}
}

func headerInt(resp *http.Response, name string) (int, bool) {
	raw := resp.Header.Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Remaining reports the last-seen remaining request count.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit reports the last-seen quota ceiling.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime reports when the quota window resets.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}
