package control

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch delivers a hint whenever the request file is created or written.
// Hints coalesce and may be spurious; the host's poll remains authoritative.
// The channel is closed when ctx is done.
func (c *Channel) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(c.paths.Dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	hints := make(chan struct{}, 1)
	log := c.log
	request := filepath.Clean(c.paths.Request)
	go func() {
		defer close(hints)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// Atomic writers rename a temp file into place.
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Clean(ev.Name) != request {
					continue
				}
				select {
				case hints <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("control watch error", "err", err)
			}
		}
	}()
	return hints, nil
}
