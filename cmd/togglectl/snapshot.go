package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/togglekit/pkg/fetcher"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

// loadSnapshot reads and validates a JSON or YAML snapshot file.
func (a *app) loadSnapshot(ctx context.Context, path string) (*toggle.Snapshot, error) {
	f, err := fetcher.NewFile(path, fetcher.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	snap, err := f.FetchAll(ctx, a.cfg.SDKKey, "")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return snap, nil
}

// parseAttrs turns key=value pairs into attributes. Values that parse as
// JSON (numbers, booleans, arrays) keep their type; anything else is a string.
func parseAttrs(pairs []string) (toggle.Attributes, error) {
	attrs := make(toggle.Attributes, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q: want key=value", pair)
		}
		attrs[key] = parseValue(raw)
	}
	return attrs, nil
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
