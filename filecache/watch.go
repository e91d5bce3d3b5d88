package filecache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/xy-planning-network/signpost/logger"
)

// An Evicter forgets names on request.
type Evicter interface {
	Evict(name string)
}

// Watch evicts names from caches whenever the file they refer to under root changes on disk.
// Names are slash-separated and relative to root, as they are in the fs.FS caches read from.
//
// Watch blocks until ctx is done.
func Watch(ctx context.Context, root string, l logger.Logger, caches ...Evicter) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addRecursive(w, ev.Name); err != nil {
						l.Warn("failed watching new directory", &logger.LogContext{Error: err, Data: map[string]any{"dir": ev.Name}})
					}
				}
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Create) {
				continue
			}

			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}

			name := filepath.ToSlash(rel)
			for _, c := range caches {
				c.Evict(name)
			}

			l.Debug("evicted "+name, nil)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			l.Error("view watcher failed", &logger.LogContext{Error: err})
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}

			return err
		}

		if d.IsDir() {
			return w.Add(path)
		}

		return nil
	})
}
