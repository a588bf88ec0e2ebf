package roster

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is the delay after a file event before reloading.
const DebounceInterval = 100 * time.Millisecond

// Watch reloads the roster whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file by rename
// are caught. A file that fails to parse is logged and the previous data
// kept. onReload, if not nil, runs after each successful reload.
func (r *Roster) Watch(ctx context.Context, logger *slog.Logger, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	name := filepath.Base(r.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.DebugContext(ctx, "watching roster", "path", r.path)

	var debounce *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceInterval, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := r.Reload(); err != nil {
				logger.WarnContext(ctx, "roster reload failed", "path", r.path, "error", err)
				continue
			}
			logger.InfoContext(ctx, "roster reloaded", "path", r.path)
			if onReload != nil {
				onReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "roster watcher error", "error", err)
		}
	}
}
