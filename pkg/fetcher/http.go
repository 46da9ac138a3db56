package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/togglekit/pkg/logger"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

const maxErrorMessage = 512

// HTTP fetches toggle snapshots from the toggle API with conditional
// requests: GET {base}/v1/toggles/{key} with If-Modified-Since.
type HTTP struct {
	baseURL *url.URL
	settings
}

// NewHTTP creates an HTTP fetcher for baseURL.
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("fetcher: invalid base URL %q: scheme and host are required", baseURL)
	}

	return &HTTP{
		baseURL:  parsed,
		settings: newSettings(false, opts),
	}, nil
}

// FetchAll downloads the snapshot for key. It returns nil without error when
// the server answers 304 Not Modified for lastModified. Non-2xx answers are
// returned as *StatusError after transient ones exhausted their retries.
func (h *HTTP) FetchAll(ctx context.Context, key, lastModified string) (*toggle.Snapshot, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	endpoint := h.baseURL.JoinPath("v1", "toggles", key).String()

	for attempt := 0; ; attempt++ {
		snap, err := h.fetchOnce(ctx, endpoint, lastModified)
		if err == nil || !h.shouldRetry(attempt, err) {
			return snap, err
		}

		delay := h.retry.Delay(attempt)
		h.logger.WarnContext(ctx, "toggle fetch failed, retrying",
			logger.Error(err),
			logger.RetryCount(attempt+1),
			logger.Duration(delay),
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (h *HTTP) fetchOnce(ctx context.Context, endpoint, lastModified string) (*toggle.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header = h.headers.Clone()
	req.Header.Set("Accept", "application/json")
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, nil
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorMessage))
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	if h.validate && len(bytes.TrimSpace(body)) > 0 {
		if err := Validate(body); err != nil {
			return nil, err
		}
	}

	snap, err := toggle.ParseSnapshot(body, resp.Header.Get("Last-Modified"))
	if err != nil {
		return nil, err
	}
	h.logger.DebugContext(ctx, "toggles fetched",
		slog.Int("count", len(snap.Toggles)),
		logger.LastModified(snap.LastModified),
	)
	return snap, nil
}

func (h *HTTP) shouldRetry(attempt int, err error) bool {
	if attempt >= h.retry.MaxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
