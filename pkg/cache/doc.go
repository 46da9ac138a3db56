// Package cache holds fetched toggle snapshots between refreshes.
//
// An Entry wraps a value with its capture time and an optional TTL in seconds.
// Expiry is evaluated lazily on read; there is no background eviction.
//
//	entry := cache.NewEntry(snapshot, cache.Seconds(30))
//	if entry.IsExpired() {
//		// fetch again
//	}
//
// TTL semantics:
//
//   - nil or NaN: the entry never expires
//   - zero or negative: the entry is expired as soon as it is read
//   - positive: the entry expires once TTL seconds have elapsed
//
// # Storage
//
// Storage is the contract the client writes entries through. It is context
// aware so that remote or asynchronous backends can be plugged in; the
// bundled MemoryStorage keeps entries in process and is bounded by an LRU:
//
//	store := cache.NewMemoryStorage[*toggle.Snapshot](0) // DefaultCapacity
//	_ = store.Set(ctx, "sdk-key", entry)
//	entry, err := store.Get(ctx, "sdk-key")
//	if errors.Is(err, cache.ErrNotFound) {
//		// nothing cached yet
//	}
//
// Writes replace the entry under a key wholesale. Concurrent writers are not
// coordinated: the last Set wins.
//
// # LRU
//
// LRU is the generic bounded map behind MemoryStorage. It is also useful on
// its own for memoizing derived values, e.g. compiled patterns:
//
//	patterns := cache.NewLRU[string, *regexp.Regexp](128)
//	patterns.Put(expr, re)
//	re, ok := patterns.Get(expr)
//
// All operations are O(1) and safe for concurrent use.
package cache
