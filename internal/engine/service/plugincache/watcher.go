package plugincache

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-arcade/oneupdate/pkg/log"
)

const watchDebounce = 2 * time.Second

// Watcher drops the plugin cache when plugin directories are added,
// removed or renamed.
type Watcher struct {
	cache   *Cache
	dir     string
	watcher *fsnotify.Watcher
}

func NewWatcher(c *Cache, dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{cache: c, dir: dir, watcher: w}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			if err := w.cache.Invalidate(ctx); err != nil {
				log.Warnw("plugin cache invalidation failed", "dir", w.dir, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnw("plugin directory watch error", "dir", w.dir, "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
