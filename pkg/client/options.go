package client

import (
	"log/slog"

	"github.com/dmitrymomot/togglekit/pkg/notify"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

// Option configures a Client.
type Option func(*Client)

// WithConfig sets refresh and cache settings.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		c.cfg = cfg
	}
}

// WithStorage replaces the in-memory storage.
func WithStorage(s Storage) Option {
	return func(c *Client) {
		if s != nil {
			c.storage = s
		}
	}
}

// WithEvaluator replaces the default evaluator.
func WithEvaluator(e *toggle.Evaluator) Option {
	return func(c *Client) {
		if e != nil {
			c.evaluator = e
		}
	}
}

// WithNotifier replaces the default event hub.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the client logger. The default evaluator logs through it too.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnUpdate registers a listener for updated events at construction time,
// before polling can deliver any.
func WithOnUpdate(fn func(keys []string)) Option {
	return func(c *Client) {
		if fn != nil {
			c.pendingListeners = append(c.pendingListeners, func(ev notify.Event) { fn(ev.Keys) })
		}
	}
}
