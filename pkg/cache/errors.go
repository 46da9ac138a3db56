package cache

import "errors"

var (
	// ErrNotFound is returned by a Storage when no entry is stored under the key.
	ErrNotFound = errors.New("cache entry not found")

	// ErrNilEntry is returned when a nil entry is passed to Set.
	ErrNilEntry = errors.New("cache entry cannot be nil")
)
