package client

import "errors"

var (
	// ErrEmptyKey is returned by New when no sdk key is given.
	ErrEmptyKey = errors.New("client: sdk key is required")

	// ErrNilFetcher is returned by New when no fetcher is given.
	ErrNilFetcher = errors.New("client: fetcher is required")

	// ErrNoSnapshot is returned by Fetch when the transport answered without a snapshot.
	ErrNoSnapshot = errors.New("client: fetch returned no snapshot")

	// ErrNotWatchable is returned by Watch when the fetcher cannot report changes.
	ErrNotWatchable = errors.New("client: fetcher does not support watching")

	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("client: closed")

	// ErrTypeMismatch is returned by Value when the toggle value cannot be
	// converted to the requested type.
	ErrTypeMismatch = errors.New("client: toggle value has unexpected type")
)
