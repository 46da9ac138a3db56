package cache

import (
	"math"
	"time"
)

// Entry wraps a cached value with the time it was captured and an optional
// time-to-live in seconds.
//
// An Entry is replaced wholesale on every successful fetch and never mutated
// afterwards, so it may be shared between goroutines without locking.
type Entry[T any] struct {
	Value     T
	Timestamp time.Time
	// TTL in seconds. Nil or NaN means the entry never expires.
	// Zero and negative values expire the entry immediately.
	TTL *float64
}

// NewEntry captures value at the current time.
func NewEntry[T any](value T, ttl *float64) *Entry[T] {
	return &Entry[T]{
		Value:     value,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
}

// Seconds returns a TTL pointer for the given number of seconds.
func Seconds(s float64) *float64 {
	return &s
}

// IsExpired reports whether the entry is stale at the current time.
func (e *Entry[T]) IsExpired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the entry is stale at now.
// A nil entry is always expired.
func (e *Entry[T]) ExpiredAt(now time.Time) bool {
	if e == nil {
		return true
	}
	if e.TTL == nil || math.IsNaN(*e.TTL) {
		return false
	}
	elapsed := now.Sub(e.Timestamp).Seconds()
	return !(elapsed < *e.TTL)
}
