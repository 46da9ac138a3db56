// Package fetcher retrieves toggle snapshots for a client.
//
// Two transports are provided and both satisfy the client's fetcher contract
// FetchAll(ctx, key, lastModified) (*toggle.Snapshot, error):
//
//   - HTTP calls GET {base}/v1/toggles/{key}. The cached freshness marker is
//     sent as If-Modified-Since; a 304 answer yields a nil snapshot. The
//     Last-Modified header of a 200 answer becomes the new marker. Transient
//     failures (network errors, 408, 429, 5xx) are retried with exponential
//     backoff and jitter.
//   - File reads a JSON or YAML document from disk and uses the file's
//     modification time as the marker. Watch reports changes via fsnotify.
//
// Payloads may be checked against the embedded JSON schema with Validate.
// Files are validated by default, HTTP responses on request:
//
//	api, err := fetcher.NewHTTP("https://toggles.example.com",
//		fetcher.WithHeader("User-Agent", "togglekit"),
//		fetcher.WithValidation(true),
//	)
//
// Non-2xx answers are returned as *StatusError.
package fetcher
