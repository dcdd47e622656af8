package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a patch file whenever it changes and hands the decoded
// patch to a callback. The parent directory is watched so that editors that
// replace the file on save are still picked up.
type Watcher struct {
	path     string
	debounce time.Duration
	apply    func(Patch) error
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the patch file at path.
func NewWatcher(path string, apply func(Patch) error) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving patch path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		apply:    apply,
		watcher:  fw,
	}, nil
}

// SetDebounce overrides the settle delay. Must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run processes file events until ctx is cancelled. The file is loaded once
// at startup if it already exists.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if _, err := os.Stat(w.path); err == nil {
		w.reload()
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("patch watcher error", "path", w.path, "error", err)
		case <-timer.C:
			w.reload()
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		slog.Warn("reading patch file", "path", w.path, "error", err)
		return
	}
	p, err := ParsePatch(data)
	if err != nil {
		slog.Warn("ignoring patch file", "path", w.path, "error", err)
		return
	}
	if p.Empty() {
		return
	}
	if err := w.apply(p); err != nil {
		slog.Warn("patch rejected", "path", w.path, "error", err)
		return
	}
	slog.Info("patch applied", "path", w.path)
}
