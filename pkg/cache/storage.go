package cache

import (
	"context"
)

// DefaultCapacity bounds MemoryStorage when no capacity is given.
const DefaultCapacity = 64

// Storage persists cache entries by key.
//
// Implementations may be backed by synchronous or asynchronous stores;
// callers always go through the context-aware methods and must not assume
// either. Set replaces the entry under key as a whole.
type Storage[T any] interface {
	Set(ctx context.Context, key string, entry *Entry[T]) error
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) (*Entry[T], error)
}

// MemoryStorage keeps entries in process, bounded by an LRU.
type MemoryStorage[T any] struct {
	entries *LRU[string, *Entry[T]]
}

// NewMemoryStorage creates an in-process storage holding at most capacity keys.
// A non-positive capacity falls back to DefaultCapacity.
func NewMemoryStorage[T any](capacity int) *MemoryStorage[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStorage[T]{entries: NewLRU[string, *Entry[T]](capacity)}
}

func (s *MemoryStorage[T]) Set(ctx context.Context, key string, entry *Entry[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry == nil {
		return ErrNilEntry
	}
	s.entries.Put(key, entry)
	return nil
}

func (s *MemoryStorage[T]) Get(ctx context.Context, key string) (*Entry[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

// Keys lists the stored keys, most recently used first.
func (s *MemoryStorage[T]) Keys() []string {
	return s.entries.Keys()
}
