package masters

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
)

// Watcher invalidates cached master snapshots when the backing files change
// on disk. The store's per-fetch fingerprint check catches edits on its own;
// the watcher additionally covers in-place rewrites the fingerprint cannot
// see and evicts eagerly instead of at the next fetch.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the master files. Paths that do not exist yet
// are skipped; the store's fingerprint check still catches them later.
func NewWatcher(store *Store, paths Paths) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	for _, p := range []string{paths.ProductMaster, paths.InspectorMaster, paths.SkillMatrix, paths.VacationSheet} {
		if p == "" {
			continue
		}
		if err := fw.Add(p); err != nil {
			continue
		}
	}
	return &Watcher{store: store, watcher: fw}, nil
}

// Run pumps file events until the context is cancelled. Writes, removals and
// renames all drop the snapshot; sheet exporters typically replace the file
// rather than rewrite it in place.
func (w *Watcher) Run(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) != 0 {
				w.store.InvalidatePath(event.Name)
				logger.Log("INFO", "Master file changed, snapshot invalidated", map[string]interface{}{
					"path": event.Name,
				})
				// A replace drops the watch with the old inode.
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					w.watcher.Add(event.Name)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log("WARN", fmt.Sprintf("Master file watcher error: %v", err), nil)
		}
	}
}
