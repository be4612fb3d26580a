package shader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads programs from the library's override directory whenever their file is written
// or created, and calls onReload with each reloaded shader. It blocks until ctx is done.
// A failed reload is logged and the previous program stays active.
//
// Parameters:
//   - ctx: cancels the watch
//   - lib: the library to reload into; must have an override directory
//   - logger: receives reload and error records
//   - onReload: called from the watcher goroutine after a successful reload
//
// Returns:
//   - error: an error if the watcher could not be started
func Watch(ctx context.Context, lib Library, logger *slog.Logger, onReload func(Shader)) error {
	dir := lib.OverrideDir()
	if dir == "" {
		return fmt.Errorf("shader: watch requires an override directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("shader: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("shader: watch %s: %w", dir, err)
	}
	logger.Info("watching shaders", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			key, ok := lib.KeyForPath(event.Name)
			if !ok {
				continue
			}
			s, err := lib.Reload(key)
			if err != nil {
				logger.Error("shader reload failed", "program", key, "err", err)
				continue
			}
			logger.Info("shader reloaded", "program", key, "version", s.Version())
			if onReload != nil {
				onReload(s)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("shader watcher error", "err", err)
		}
	}
}
