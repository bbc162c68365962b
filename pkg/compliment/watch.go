package compliment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDebounce absorbs the burst of events editors emit for one save.
const ReloadDebounce = 250 * time.Millisecond

// Watch reloads the catalog at path whenever the file changes and delivers
// each valid catalog on the returned channel. Only the newest catalog is
// kept if the receiver falls behind. Invalid edits are logged and skipped.
// The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan *Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "compliment.watch", "path", path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan *Catalog, 1)
	go func() {
		defer close(out)
		defer w.Close()

		file := filepath.Clean(path)
		timer := time.NewTimer(ReloadDebounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != file {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					timer.Reset(ReloadDebounce)
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)

			case <-timer.C:
				c, err := LoadFile(path)
				if err != nil {
					logger.Warn("catalog reload rejected", "error", err)
					continue
				}
				deliver(out, c)
				logger.Info("catalog reloaded")
			}
		}
	}()

	return out, nil
}

// deliver replaces any undelivered catalog with c.
func deliver(ch chan *Catalog, c *Catalog) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- c:
	default:
	}
}
