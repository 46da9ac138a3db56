package fetcher

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls retries of transient fetch failures.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter spreads each delay by up to ±Jitter of its value (0..1).
	Jitter float64
}

// DefaultRetryPolicy retries three times between 250ms and 2s.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
	Jitter:     0.25,
}

// NoRetry disables retries.
var NoRetry = RetryPolicy{}

// Delay returns the wait before retry number attempt (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	base, maxDelay := p.BaseDelay, p.MaxDelay
	if base <= 0 {
		base = DefaultRetryPolicy.BaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultRetryPolicy.MaxDelay
	}

	delay := maxDelay
	if scaled := float64(base) * math.Pow(2, float64(max(attempt, 0))); scaled < float64(maxDelay) {
		delay = time.Duration(scaled)
	}
	return jitter(delay, p.Jitter)
}

func jitter(delay time.Duration, amount float64) time.Duration {
	if amount <= 0 || delay <= 0 {
		return delay
	}
	factor := 1 + (rand.Float64()*2-1)*math.Min(amount, 1)
	return time.Duration(float64(delay) * max(factor, 0))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
