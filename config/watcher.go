package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file into a Store whenever it is written.
// A file that fails to parse leaves the previous version in place.
type Watcher struct {
	path     string
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
}

// NewWatcher watches the directory containing path so editors that replace
// the file on save are still picked up.
func NewWatcher(path string, store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		watcher:  fw,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Run blocks until ctx is cancelled, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)
	defer w.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "path", w.path, "error", err)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// Done is closed once Run has returned.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("config reload rejected", "path", w.path, "error", err)
		return
	}
	snap := w.store.Publish(cfg)
	slog.Info("config reloaded", "path", w.path, "version", snap.Version)
}
