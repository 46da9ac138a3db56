// Package client keeps a feature toggle snapshot fresh and evaluates toggles
// against it.
//
// A Client ties together a Fetcher (see package fetcher), a cache.Storage,
// a toggle.Evaluator and a notifier for lifecycle events:
//
//	api, err := fetcher.NewHTTP("https://toggles.example.com")
//	if err != nil {
//		return err
//	}
//
//	var cfg client.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	c, err := client.New(sdkKey, api,
//		client.WithConfig(cfg),
//		client.WithLogger(log),
//		client.WithOnUpdate(func(keys []string) {
//			log.Info("toggles changed", "keys", keys)
//		}),
//	)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := c.Fetch(ctx); err != nil {
//		// evaluation still works and returns defaults
//	}
//
//	enabled, err := client.Value(c, "new-checkout", false, toggle.Attributes{
//		toggle.IdentityKey: user.ID,
//	})
//
// # Freshness
//
// Fetch prefers an unexpired cache entry. Refresh sends the cached
// freshness marker so the server can answer "not modified", and returns the
// names of toggles whose definitions changed.
//
// # Polling
//
// StartPolling runs Refresh on a fixed interval and emits an updated event
// when something changed. Every start and stop moves the poller to a new
// generation; a refresh that completes for an older generation is dropped,
// so nothing is written to the cache after StopPolling returns.
package client
