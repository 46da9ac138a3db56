package client

import (
	"context"
	"log/slog"

	"github.com/robfig/cron"

	"github.com/dmitrymomot/togglekit/pkg/logger"
	"github.com/dmitrymomot/togglekit/pkg/notify"
)

// StartPolling refreshes the snapshot every Config.Interval and emits an
// updated event whenever toggles changed. Calling it while polling restarts
// the schedule.
func (c *Client) StartPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	if c.closed.Load() {
		return
	}
	c.stopPollingLocked()

	c.writeMu.Lock()
	c.generation++
	gen := c.generation
	c.writeMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.ContextWithAttrs(ctx, logger.Generation(gen))

	interval := c.cfg.Interval()
	scheduler := cron.New()
	scheduler.Schedule(cron.Every(interval), cron.FuncJob(func() { c.poll(ctx, gen) }))
	scheduler.Start()

	c.scheduler = scheduler
	c.pollCancel = cancel
	c.logger.InfoContext(ctx, "polling started", slog.Duration("interval", interval))
}

// StopPolling stops future ticks and cancels an in-flight refresh. A
// response that still arrives afterwards is discarded.
func (c *Client) StopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	c.stopPollingLocked()
}

// Polling reports whether the poller is running.
func (c *Client) Polling() bool {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	return c.scheduler != nil
}

func (c *Client) stopPollingLocked() {
	if c.scheduler == nil {
		return
	}
	c.scheduler.Stop()
	c.pollCancel()

	c.writeMu.Lock()
	c.generation++
	c.writeMu.Unlock()

	c.scheduler = nil
	c.pollCancel = nil
	c.logger.Info("polling stopped")
}

func (c *Client) poll(ctx context.Context, gen uint64) {
	if ctx.Err() != nil {
		return
	}
	keys, err := c.refresh(ctx, &gen)
	if err != nil || len(keys) == 0 {
		return
	}
	c.emit(ctx, notify.Event{Kind: notify.EventUpdated, Keys: keys})
}
