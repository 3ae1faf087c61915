package api

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxBackoff = 60 * time.Second

// RateLimiter paces outbound calls with a token bucket.
//
// A 429 or 503 from the API puts the limiter into backoff: later calls wait it
// out. The call that got the 429/503 is not retried.
type RateLimiter struct {
	bucket *rate.Limiter // nil when pacing is disabled

	mu           sync.Mutex
	backoffUntil time.Time
	consecutive  int
	metrics      RateLimitMetrics
}

// RateLimitMetrics is a point-in-time copy of the limiter counters.
type RateLimitMetrics struct {
	RequestsTotal   int64         `json:"requests_total"`
	RequestsBlocked int64         `json:"requests_blocked"`
	Throttled       int64         `json:"throttled"`
	AvgWaitTime     time.Duration `json:"avg_wait_ns"`
	totalWaitTime   time.Duration
	waitTimeCount   int64
}

// NewRateLimiter allows r requests per second on average with the given
// burst. A non-positive r disables pacing (only backoff applies).
func NewRateLimiter(r float64, burst int) *RateLimiter {
	rl := &RateLimiter{}
	if r > 0 {
		rl.bucket = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
	return rl
}

// Wait blocks until a request slot is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() { rl.recordWaitTime(time.Since(start)) }()

	for {
		rl.mu.Lock()
		wait := time.Until(rl.backoffUntil)
		rl.mu.Unlock()
		if wait <= 0 {
			break
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}

	if rl.bucket != nil {
		res := rl.bucket.Reserve()
		if delay := res.Delay(); delay > 0 {
			rl.mu.Lock()
			rl.metrics.RequestsBlocked++
			rl.mu.Unlock()
			if err := sleepCtx(ctx, delay); err != nil {
				res.Cancel()
				return err
			}
		}
	}

	rl.mu.Lock()
	rl.metrics.RequestsTotal++
	rl.mu.Unlock()
	return nil
}

// Backoff records a throttling response. retryAfter, when positive, is the
// server's Retry-After hint; otherwise the delay doubles from 2s up to 60s
// with each consecutive throttle.
func (rl *RateLimiter) Backoff(retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.metrics.Throttled++
	rl.consecutive++

	delay := retryAfter
	if delay <= 0 {
		shift := min(rl.consecutive, 6)
		delay = time.Duration(1<<uint(shift)) * time.Second
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}

	rl.backoffUntil = time.Now().Add(delay)
	log.Printf("[API] Throttled by hotel API, backing off for %s", delay)
}

// ResetBackoff clears backoff after a successful request.
func (rl *RateLimiter) ResetBackoff() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.consecutive = 0
	rl.backoffUntil = time.Time{}
}

// Metrics returns a snapshot of the limiter counters.
func (rl *RateLimiter) Metrics() RateLimitMetrics {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	m := rl.metrics
	if m.waitTimeCount > 0 {
		m.AvgWaitTime = m.totalWaitTime / time.Duration(m.waitTimeCount)
	}
	return m
}

func (rl *RateLimiter) recordWaitTime(d time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.metrics.totalWaitTime += d
	rl.metrics.waitTimeCount++
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
