package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of filesystem events an editor or
// atomic save produces into a single reload.
const debounceWindow = 100 * time.Millisecond

// Watch reloads path whenever it changes and hands each valid new
// Config to apply. A reload that fails to parse or validate is logged
// and discarded; the previous config stays in effect. Watch blocks
// until ctx is cancelled.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	slog.Info("config: watching for changes", "path", path)

	// Armed after a relevant event; fires once the burst settles.
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves surface as Create of the replacement file.
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				settle = time.After(debounceWindow)
			}

		case <-settle:
			settle = nil
			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous",
					"path", path, "err", err)
			} else {
				slog.Info("config: reloaded", "path", path)
				apply(cfg)
			}
			// The save may have replaced the inode; re-arm the watch.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
