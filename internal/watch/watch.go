// Package watch re-runs a callback when a batch file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/josephgoksu/smarttask/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 150 * time.Millisecond

// FileWatcher watches one file. The parent directory is watched so that
// editors that save by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration

	closeOnce sync.Once
}

// New starts watching path.
func New(path string, debounce time.Duration) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{watcher: fsWatcher, path: absPath, debounce: debounce}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Run calls onChange after each settled write, create or rename of the
// file until ctx is done. onChange runs on the Run goroutine.
func (w *FileWatcher) Run(ctx context.Context, onChange func()) error {
	defer func() { _ = w.Close() }()

	log := logger.FromContext(ctx)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("batch file changed", "path", w.path, "op", event.Op.String())
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *FileWatcher) Close() error {
	var closeErr error
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return closeErr
}
