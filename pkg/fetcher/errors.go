package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyBaseURL      = errors.New("fetcher: base URL is required")
	ErrEmptyPath         = errors.New("fetcher: file path is required")
	ErrEmptyKey          = errors.New("fetcher: sdk key is required")
	ErrSchemaViolation   = errors.New("fetcher: payload does not match toggle schema")
	ErrUnsupportedFormat = errors.New("fetcher: unsupported file format")
	ErrPayloadTooLarge   = errors.New("fetcher: payload exceeds size limit")
)

// StatusError is a non-2xx response from the toggle API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fetcher: unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetcher: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is transient.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}
