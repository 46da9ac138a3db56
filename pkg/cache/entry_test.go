package cache_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/togglekit/pkg/cache"
)

func TestEntry_IsExpired(t *testing.T) {
	t.Parallel()

	t.Run("fresh entry with ttl is not expired", func(t *testing.T) {
		t.Parallel()
		entry := cache.NewEntry("payload", cache.Seconds(2))
		assert.False(t, entry.IsExpired())
	})

	t.Run("entry older than ttl is expired", func(t *testing.T) {
		t.Parallel()
		entry := &cache.Entry[string]{
			Value:     "payload",
			Timestamp: time.Now().Add(-2100 * time.Millisecond),
			TTL:       cache.Seconds(2),
		}
		assert.True(t, entry.IsExpired())
	})

	t.Run("entry younger than ttl is not expired", func(t *testing.T) {
		t.Parallel()
		entry := &cache.Entry[string]{
			Value:     "payload",
			Timestamp: time.Now().Add(-2 * time.Second),
			TTL:       cache.Seconds(3),
		}
		assert.False(t, entry.IsExpired())
	})

	t.Run("unset ttl never expires", func(t *testing.T) {
		t.Parallel()
		entry := &cache.Entry[string]{
			Value:     "payload",
			Timestamp: time.Now().Add(-10 * time.Second),
		}
		assert.False(t, entry.IsExpired())
	})

	t.Run("NaN ttl never expires", func(t *testing.T) {
		t.Parallel()
		entry := &cache.Entry[string]{
			Value:     "payload",
			Timestamp: time.Now().Add(-10 * time.Second),
			TTL:       cache.Seconds(math.NaN()),
		}
		assert.False(t, entry.IsExpired())
	})

	t.Run("zero ttl expires immediately", func(t *testing.T) {
		t.Parallel()
		entry := cache.NewEntry("payload", cache.Seconds(0))
		assert.True(t, entry.IsExpired())
	})

	t.Run("infinite ttl never expires", func(t *testing.T) {
		t.Parallel()
		entry := &cache.Entry[string]{
			Timestamp: time.Now().Add(-24 * time.Hour),
			TTL:       cache.Seconds(math.Inf(1)),
		}
		assert.False(t, entry.IsExpired())
	})

	t.Run("nil entry is expired", func(t *testing.T) {
		t.Parallel()
		var entry *cache.Entry[string]
		assert.True(t, entry.IsExpired())
	})
}

func TestEntry_ExpiredAt(t *testing.T) {
	t.Parallel()

	captured := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := &cache.Entry[int]{Value: 1, Timestamp: captured, TTL: cache.Seconds(2)}

	assert.False(t, entry.ExpiredAt(captured))
	assert.False(t, entry.ExpiredAt(captured.Add(1999*time.Millisecond)))
	assert.True(t, entry.ExpiredAt(captured.Add(2*time.Second)))
	assert.True(t, entry.ExpiredAt(captured.Add(time.Minute)))
}
