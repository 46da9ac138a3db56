package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/togglekit/pkg/fetcher"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

const (
	testKey      = "sdk-key-123"
	lastModified = "Tue, 01 Oct 2024 10:00:00 GMT"
	payload      = `[
		{"name": "checkout", "status": 1, "value": true},
		{"name": "banner", "status": 1, "strategy": 1, "value": "blue",
		 "conditions": [{"key": "country", "operator": {"name": "equal", "value": "DE"}}]}
	]`
)

type fakeAPI struct {
	hits     atomic.Int32
	failures atomic.Int32
	status   int
	body     string
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/toggles/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)

		if chi.URLParam(r, "key") != testKey {
			http.Error(w, "unknown sdk key", http.StatusNotFound)
			return
		}
		if f.failures.Load() > 0 {
			f.failures.Add(-1)
			http.Error(w, "try again", f.status)
			return
		}
		if r.Header.Get("If-Modified-Since") == lastModified {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", lastModified)
		_, _ = w.Write([]byte(f.body))
	})
	return r
}

func newServer(t *testing.T, api *fakeAPI) *httptest.Server {
	t.Helper()
	if api.body == "" {
		api.body = payload
	}
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)
	return srv
}

var fastRetry = fetcher.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestNewHTTP(t *testing.T) {
	t.Parallel()

	_, err := fetcher.NewHTTP("")
	assert.ErrorIs(t, err, fetcher.ErrEmptyBaseURL)

	_, err = fetcher.NewHTTP("not a url")
	assert.Error(t, err)

	h, err := fetcher.NewHTTP("http://localhost:8080")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestHTTP_FetchAll(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{})
		h, err := fetcher.NewHTTP(srv.URL)
		require.NoError(t, err)

		snap, err := h.FetchAll(context.Background(), testKey, "")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, lastModified, snap.LastModified)
		assert.Equal(t, []string{"checkout", "banner"}, snap.Names())

		banner, ok := snap.Find("banner")
		require.True(t, ok)
		assert.Equal(t, toggle.StrategyAtLeastOne, banner.Strategy)
	})

	t.Run("NotModified", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{})
		h, err := fetcher.NewHTTP(srv.URL)
		require.NoError(t, err)

		snap, err := h.FetchAll(context.Background(), testKey, lastModified)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("RetriesTransientFailures", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{status: http.StatusServiceUnavailable}
		api.failures.Store(2)
		srv := newServer(t, api)
		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithRetryPolicy(fastRetry))
		require.NoError(t, err)

		snap, err := h.FetchAll(context.Background(), testKey, "")
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, int32(3), api.hits.Load())
	})

	t.Run("GivesUpAfterRetries", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{status: http.StatusInternalServerError}
		api.failures.Store(10)
		srv := newServer(t, api)
		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithRetryPolicy(fastRetry))
		require.NoError(t, err)

		snap, err := h.FetchAll(context.Background(), testKey, "")
		assert.Nil(t, snap)

		var statusErr *fetcher.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, "try again", statusErr.Message)
		assert.Equal(t, int32(3), api.hits.Load())
	})

	t.Run("ClientErrorsAreNotRetried", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{}
		srv := newServer(t, api)
		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithRetryPolicy(fastRetry))
		require.NoError(t, err)

		_, err = h.FetchAll(context.Background(), "other-key", "")
		var statusErr *fetcher.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.False(t, statusErr.Retryable())
		assert.Equal(t, int32(1), api.hits.Load())
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{body: `{"payload": "nope"`})
		h, err := fetcher.NewHTTP(srv.URL)
		require.NoError(t, err)

		_, err = h.FetchAll(context.Background(), testKey, "")
		assert.ErrorIs(t, err, toggle.ErrInvalidSnapshot)
	})

	t.Run("SchemaValidation", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{body: `[{"name": "t", "status": 1, "conditions": [{"key": "k"}]}]`})
		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithValidation(true))
		require.NoError(t, err)

		_, err = h.FetchAll(context.Background(), testKey, "")
		assert.ErrorIs(t, err, fetcher.ErrSchemaViolation)
	})

	t.Run("PayloadTooLarge", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{})
		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithMaxBytes(16))
		require.NoError(t, err)

		_, err = h.FetchAll(context.Background(), testKey, "")
		assert.ErrorIs(t, err, fetcher.ErrPayloadTooLarge)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		t.Parallel()

		h, err := fetcher.NewHTTP("http://localhost:1")
		require.NoError(t, err)
		_, err = h.FetchAll(context.Background(), "", "")
		assert.ErrorIs(t, err, fetcher.ErrEmptyKey)
	})

	t.Run("CustomHeaders", func(t *testing.T) {
		t.Parallel()

		var agent atomic.Value
		r := chi.NewRouter()
		r.Get("/v1/toggles/{key}", func(w http.ResponseWriter, r *http.Request) {
			agent.Store(r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`[]`))
		})
		srv := httptest.NewServer(r)
		t.Cleanup(srv.Close)

		h, err := fetcher.NewHTTP(srv.URL, fetcher.WithHeader("User-Agent", "togglekit-test"))
		require.NoError(t, err)
		snap, err := h.FetchAll(context.Background(), testKey, "")
		require.NoError(t, err)
		assert.Empty(t, snap.Toggles)
		assert.Equal(t, "togglekit-test", agent.Load())
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &fakeAPI{})
		h, err := fetcher.NewHTTP(srv.URL)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = h.FetchAll(ctx, testKey, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	p := fetcher.RetryPolicy{BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, p.Delay(0))
	assert.Equal(t, 20*time.Millisecond, p.Delay(1))
	assert.Equal(t, 40*time.Millisecond, p.Delay(2))
	assert.Equal(t, 50*time.Millisecond, p.Delay(3))
	assert.Equal(t, 50*time.Millisecond, p.Delay(64))

	p.Jitter = 0.5
	for range 100 {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 30*time.Millisecond)
	}
}
