package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron"

	"github.com/dmitrymomot/togglekit/pkg/cache"
	"github.com/dmitrymomot/togglekit/pkg/logger"
	"github.com/dmitrymomot/togglekit/pkg/notify"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

// Fetcher retrieves the snapshot for an sdk key. A nil snapshot without
// error means nothing changed since lastModified.
type Fetcher interface {
	FetchAll(ctx context.Context, key, lastModified string) (*toggle.Snapshot, error)
}

// Watcher is implemented by fetchers that can push change notifications.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Notifier receives client lifecycle events.
type Notifier interface {
	On(kind notify.EventKind, fn notify.Listener) (off func())
	Emit(ev notify.Event) error
	Close() error
}

// Storage holds cache entries between refreshes.
type Storage = cache.Storage[*toggle.Snapshot]

type entry = cache.Entry[*toggle.Snapshot]

const defaultEventBuffer = 16

// Client keeps a toggle snapshot fresh and evaluates toggles against it.
// Evaluation never blocks on the network: it reads the last snapshot held
// in memory, which may be stale. All methods are safe for concurrent use.
type Client struct {
	key       string
	fetcher   Fetcher
	storage   Storage
	evaluator *toggle.Evaluator
	notifier  Notifier
	logger    *slog.Logger
	cfg       Config

	pendingListeners []notify.Listener

	current     atomic.Pointer[entry]
	initialized atomic.Bool
	closed      atomic.Bool

	// writeMu orders cache writes against generation changes so that a
	// refresh started by a stopped poller never lands.
	writeMu    sync.Mutex
	generation uint64

	pollMu     sync.Mutex
	scheduler  *cron.Cron
	pollCancel context.CancelFunc
}

// New creates a client for key. With Config.AutoRefresh set, polling starts
// immediately; call Fetch to load the first snapshot.
func New(key string, f Fetcher, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if f == nil {
		return nil, ErrNilFetcher
	}

	c := &Client{
		key:     key,
		fetcher: f,
		storage: cache.NewMemoryStorage[*toggle.Snapshot](cache.DefaultCapacity),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.NewHub(defaultEventBuffer)
	}
	if c.evaluator == nil {
		c.evaluator = toggle.NewEvaluator(toggle.WithLogger(c.logger))
	}
	c.logger = c.logger.With(logger.SDKKey(key))

	for _, l := range c.pendingListeners {
		c.notifier.On(notify.EventUpdated, l)
	}
	c.pendingListeners = nil

	if c.cfg.AutoRefresh {
		c.StartPolling()
	}
	return c, nil
}

// Fetch loads the snapshot, preferring an unexpired cache entry over the
// network. The first successful load emits an init event with all toggle names.
func (c *Client) Fetch(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	cached, err := c.storage.Get(ctx, c.key)
	switch {
	case err == nil && !cached.IsExpired():
		c.current.Store(cached)
		c.logger.DebugContext(ctx, "toggles loaded from cache")
		c.markInitialized(ctx, cached.Value)
		return nil
	case err != nil && !errors.Is(err, cache.ErrNotFound):
		c.logger.WarnContext(ctx, "cache read failed", logger.Error(err))
	}

	snap, err := c.fetcher.FetchAll(ctx, c.key, "")
	if err != nil {
		c.logger.ErrorContext(ctx, "toggle fetch failed", logger.Error(err))
		return fmt.Errorf("client: fetch toggles: %w", err)
	}
	if snap == nil {
		return ErrNoSnapshot
	}

	c.writeMu.Lock()
	c.store(ctx, snap)
	c.writeMu.Unlock()

	c.logger.DebugContext(ctx, "toggles loaded", logger.LastModified(snap.LastModified))
	c.markInitialized(ctx, snap)
	return nil
}

// Refresh fetches conditionally with the cached freshness marker and returns
// the names of toggles that changed. It returns nil keys when nothing changed.
// On failure the cached snapshot is left untouched.
func (c *Client) Refresh(ctx context.Context) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.refresh(ctx, nil)
}

// refresh stores the fetched snapshot unless gen is set and no longer the
// current generation.
func (c *Client) refresh(ctx context.Context, gen *uint64) ([]string, error) {
	var (
		prev   *toggle.Snapshot
		marker string
	)
	cached := c.entry(ctx)
	if cached != nil && cached.Value != nil {
		prev = cached.Value
		marker = prev.LastModified
	}

	snap, err := c.fetcher.FetchAll(ctx, c.key, marker)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.DebugContext(ctx, "toggle refresh cancelled", logger.Error(err))
		} else {
			c.logger.WarnContext(ctx, "toggle refresh failed", logger.Error(err))
		}
		return nil, fmt.Errorf("client: refresh toggles: %w", err)
	}
	if snap == nil || (marker != "" && snap.LastModified == marker) {
		c.logger.DebugContext(ctx, "toggles not modified", logger.LastModified(marker))
		if prev != nil {
			c.adopt(ctx, cached, gen)
		}
		return nil, nil
	}

	keys := toggle.ChangedKeys(snap, prev)

	c.writeMu.Lock()
	if gen != nil && *gen != c.generation {
		c.writeMu.Unlock()
		c.logger.DebugContext(ctx, "discarding refresh from stopped poller")
		return nil, nil
	}
	c.store(ctx, snap)
	c.writeMu.Unlock()

	c.logger.DebugContext(ctx, "toggles refreshed",
		logger.Keys(keys),
		logger.LastModified(snap.LastModified),
	)
	c.markInitialized(ctx, snap)
	return keys, nil
}

// adopt makes an entry found only in storage the in-memory snapshot, so a
// "not modified" answer still serves what the storage holds.
func (c *Client) adopt(ctx context.Context, e *entry, gen *uint64) {
	c.writeMu.Lock()
	if gen != nil && *gen != c.generation {
		c.writeMu.Unlock()
		return
	}
	adopted := c.current.CompareAndSwap(nil, e)
	c.writeMu.Unlock()

	if adopted {
		c.logger.DebugContext(ctx, "toggles loaded from cache", logger.LastModified(e.Value.LastModified))
		c.markInitialized(ctx, e.Value)
	}
}

// store replaces the cache entry wholesale. Callers hold writeMu.
// The storage write outlives cancellation of ctx so that memory and storage
// stay in step once the generation check has passed.
func (c *Client) store(ctx context.Context, snap *toggle.Snapshot) {
	e := cache.NewEntry(snap, c.cfg.ttl())
	c.current.Store(e)
	if err := c.storage.Set(context.WithoutCancel(ctx), c.key, e); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", logger.Error(err))
	}
}

func (c *Client) entry(ctx context.Context) *entry {
	if e := c.current.Load(); e != nil {
		return e
	}
	e, err := c.storage.Get(ctx, c.key)
	if err != nil {
		return nil
	}
	return e
}

func (c *Client) markInitialized(ctx context.Context, snap *toggle.Snapshot) {
	if c.initialized.CompareAndSwap(false, true) {
		c.emit(ctx, notify.Event{Kind: notify.EventInit, Keys: snap.Names()})
	}
}

func (c *Client) emit(ctx context.Context, ev notify.Event) {
	if err := c.notifier.Emit(ev); err != nil {
		c.logger.DebugContext(ctx, "event dropped",
			slog.String("event", string(ev.Kind)),
			logger.Error(err),
		)
	}
}

// Watch refreshes whenever the fetcher reports a change and emits updated
// events for changed toggles. It blocks until ctx is done and fails with
// ErrNotWatchable for fetchers that cannot watch.
func (c *Client) Watch(ctx context.Context) error {
	w, ok := c.fetcher.(Watcher)
	if !ok {
		return ErrNotWatchable
	}
	return w.Watch(ctx, func() {
		keys, err := c.Refresh(ctx)
		if err == nil && len(keys) > 0 {
			c.emit(ctx, notify.Event{Kind: notify.EventUpdated, Keys: keys})
		}
	})
}

// OnUpdate registers fn for updated events and returns a func removing it.
func (c *Client) OnUpdate(fn func(keys []string)) (off func()) {
	return c.notifier.On(notify.EventUpdated, func(ev notify.Event) { fn(ev.Keys) })
}

// OnInit registers fn for the init event and returns a func removing it.
func (c *Client) OnInit(fn func(keys []string)) (off func()) {
	return c.notifier.On(notify.EventInit, func(ev notify.Event) { fn(ev.Keys) })
}

// Close stops polling and closes the notifier. It is safe to call twice.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.StopPolling()
	return c.notifier.Close()
}
