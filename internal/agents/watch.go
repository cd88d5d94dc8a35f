package agents

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alphatechlogics/Multi-Agent-AI-Assistant/internal/alerts"
)

// Watch reloads the registry whenever its yaml file changes on disk, so
// prompt edits land without a restart. Returns a stop function.
func (r *Registry) Watch(ctx context.Context, notify alerts.Notifier) (func(), error) {
	if r.path == "" {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory, not the file: atomic saves swap the inode and a
	// file watch would go dead on the first rename.
	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		// editors fire several events per save, collapse them
		var debounce *time.Timer
		const debounceAfter = 500 * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					notify.Notify(ctx, "agents",
						fmt.Errorf("agents file gone: %s", r.path),
						"keeping last good registry")
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceAfter, func() {
					if err := r.Reload(); err != nil {
						notify.Notify(ctx, "agents", err, "reload failed, keeping previous set")
						return
					}
					log.Printf("[agents] reloaded %s", r.path)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[agents] watcher error: %v", err)
			}
		}
	}()

	stop := func() {
		_ = watcher.Close()
		<-done
	}
	return stop, nil
}
