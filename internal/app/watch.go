package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/loader"
)

// Watch runs the configured arrangement once, then again every time an
// arrangement file below the configured path changes. Events are debounced
// by the configured period. Run failures are reported and watching goes on;
// Watch returns when ctx is done or the watcher cannot be set up.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.ConfigPath == "" {
		return ErrNoPath
	}
	a.startHealthCheckServer()

	target, err := filepath.Abs(a.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat watch path: %w", err)
	}
	dir, file := target, ""
	if !info.IsDir() {
		dir, file = filepath.Dir(target), target
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so the directory is watched, not the file.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	a.logger.Info("👀 Watching arrangements.", "path", target, "debounce", a.config.WatchDebounce)

	a.runWatched(ctx)

	debounce := time.NewTimer(a.config.WatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopped watching arrangements.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, file) {
				continue
			}
			a.logger.Debug("Arrangement file changed.", "path", event.Name, "op", event.Op.String())
			debounce.Reset(a.config.WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("File watcher error.", "error", err)

		case <-debounce.C:
			a.runWatched(ctx)
		}
	}
}

func (a *App) runWatched(ctx context.Context) {
	arr, err := a.load(ctx)
	if err != nil {
		a.logger.Error("Cannot load arrangement, waiting for the next change.", "error", err)
		return
	}
	if _, err := a.execute(ctx, arr); err != nil {
		a.logger.Error("Run failed, waiting for the next change.", "error", err)
	}
}

// relevant reports whether event touches an arrangement file. With file set
// only that file counts.
func relevant(event fsnotify.Event, file string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if file != "" {
		return filepath.Clean(event.Name) == file
	}
	return slices.Contains(loader.Extensions, strings.ToLower(filepath.Ext(event.Name)))
}
