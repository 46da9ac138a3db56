package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/togglekit/pkg/client"
	"github.com/dmitrymomot/togglekit/pkg/fetcher"
	"github.com/dmitrymomot/togglekit/pkg/logger"
)

// eventPrinter serializes event lines coming from polling and watch goroutines.
type eventPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *eventPrinter) print(kind string, keys []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s\t%s\n", kind, strings.Join(keys, ","))
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		file, url string
		interval  int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a snapshot fresh and print init and updated events",
		Long: `Watch loads toggles from a file or the toggle API and prints an event
line whenever the set of toggles changes. Files are watched for writes;
the API is polled every --interval seconds (TOGGLE_REFRESH_INTERVAL).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg.Client
			if interval > 0 {
				cfg.RefreshInterval = interval
			}

			var (
				src client.Fetcher
				err error
			)
			switch {
			case file != "":
				src, err = fetcher.NewFile(file, fetcher.WithLogger(a.log))
			case url != "" || a.cfg.BaseURL != "":
				if url == "" {
					url = a.cfg.BaseURL
				}
				src, err = fetcher.NewHTTP(url, fetcher.WithLogger(a.log))
				cfg.AutoRefresh = true
			default:
				return errors.New("one of --file, --url or TOGGLE_BASE_URL is required")
			}
			if err != nil {
				return err
			}

			p := &eventPrinter{out: cmd.OutOrStdout()}
			c, err := client.New(a.cfg.SDKKey, src,
				client.WithConfig(cfg),
				client.WithLogger(a.log),
				client.WithOnUpdate(func(keys []string) { p.print("updated", keys) }),
			)
			if err != nil {
				return err
			}
			defer c.Close()
			c.OnInit(func(keys []string) { p.print("init", keys) })

			if err := c.Fetch(ctx); err != nil {
				a.log.WarnContext(ctx, "initial fetch failed, serving defaults", logger.Error(err))
			}

			if _, ok := src.(client.Watcher); ok {
				return watchUntilDone(ctx, c)
			}
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file to watch")
	cmd.Flags().StringVarP(&url, "url", "u", "", "toggle API base url (default TOGGLE_BASE_URL)")
	cmd.Flags().IntVarP(&interval, "interval", "i", 0, "polling interval in seconds")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func watchUntilDone(ctx context.Context, c *client.Client) error {
	if err := c.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
