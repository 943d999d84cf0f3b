package routing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

const debounce = 150 * time.Millisecond

// Watch reloads the table whenever the file changes and hands the new
// handlers to apply. A table that fails to load is logged and skipped; the
// previous handlers stay active. Watch blocks until ctx is canceled.
func Watch(ctx context.Context, path string, deps Deps, apply func([]ports.Handler), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			hs, err := LoadHandlers(path, deps)
			if err != nil {
				logger.Error("Routing table reload failed", "path", path, "err", err)
				continue
			}
			logger.Info("Routing table reloaded", "path", path, "handlers", len(hs))
			apply(hs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "err", err)
		}
	}
}
