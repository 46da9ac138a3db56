package fetcher

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a fetcher.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
	headers    http.Header
	retry      RetryPolicy
	validate   bool
	maxBytes   int64
	logger     *slog.Logger
}

const defaultMaxBytes = 10 << 20

func newSettings(validate bool, opts []Option) settings {
	s := settings{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(http.Header),
		retry:      DefaultRetryPolicy,
		validate:   validate,
		maxBytes:   defaultMaxBytes,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.retry.MaxRetries < 0 {
		s.retry.MaxRetries = 0
	}
	return s
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.headers.Add(key, value)
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *settings) {
		s.retry = p
	}
}

// WithValidation toggles JSON schema validation of payloads. It is on by
// default for files and off for HTTP.
func WithValidation(enabled bool) Option {
	return func(s *settings) {
		s.validate = enabled
	}
}

// WithMaxBytes limits the accepted payload size.
func WithMaxBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the logger for retries and watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
