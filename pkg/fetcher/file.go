package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/togglekit/pkg/logger"
	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

// File serves a snapshot from a local JSON or YAML file. The file's
// modification time is the freshness marker, so an untouched file is
// reported as not modified.
type File struct {
	path string
	settings
}

// NewFile creates a file fetcher. Payloads are validated against the
// snapshot schema unless WithValidation(false) is given.
func NewFile(path string, opts ...Option) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fetcher: resolve %q: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(abs))
	}

	return &File{path: abs, settings: newSettings(true, opts)}, nil
}

// Path returns the absolute path of the watched file.
func (f *File) Path() string {
	return f.path
}

// FetchAll reads the file. The key is ignored: a file holds one snapshot.
func (f *File) FetchAll(ctx context.Context, _ string, lastModified string) (*toggle.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	marker := info.ModTime().UTC().Format(time.RFC3339Nano)
	if lastModified != "" && marker == lastModified {
		return nil, nil
	}
	if info.Size() > f.maxBytes {
		return nil, ErrPayloadTooLarge
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}

	if ext := strings.ToLower(filepath.Ext(f.path)); ext == ".yaml" || ext == ".yml" {
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}

	if f.validate {
		if err := Validate(data); err != nil {
			return nil, err
		}
	}

	return toggle.ParseSnapshot(data, marker)
}

// Watch calls onChange whenever the file is written, created or replaced,
// until ctx is done. The parent directory is watched so that editors which
// save by renaming are picked up too.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fetcher: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("fetcher: watch %q: %w", f.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.WarnContext(ctx, "file watch error", logger.Error(err))
		}
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(toggle.ErrInvalidSnapshot, err)
	}
	out, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, errors.Join(toggle.ErrInvalidSnapshot, err)
	}
	return out, nil
}

// normalizeYAML turns map[any]any nodes into map[string]any so the document
// can be encoded as JSON.
func normalizeYAML(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = normalizeYAML(child)
		}
		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range node {
			node[i] = normalizeYAML(child)
		}
		return node
	default:
		return v
	}
}
