// Package watch reports changes in the app-data directory.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event kinds passed to Callback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Callback is called for each file change. path is relative to the watched
// root and uses forward slashes.
type Callback func(kind string, path string)

// Watch starts an fsnotify watcher on root and processes change events until
// ctx is cancelled. Directories created at runtime are added to the watch
// list. Atomic-write temp files are ignored; an atomic replace of an existing
// file is reported as an update.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	known := make(map[string]struct{})
	if err := addDirsRecursive(w, root, root, known); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	emit := func(kind, rel string) {
		logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
		if cb != nil {
			cb(kind, rel)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name
			if isTemp(filepath.Base(absPath)) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					before := len(known)
					if addErr := addDirsRecursive(w, root, absPath, known); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					if len(known) > before {
						// Files moved in together with the directory.
						_ = filepath.WalkDir(absPath, func(p string, d fs.DirEntry, err error) error {
							if err == nil && !d.IsDir() && !isTemp(d.Name()) {
								emit(KindCreated, relPath(root, p))
							}
							return nil
						})
					}
					continue
				}
			}

			rel := relPath(root, absPath)
			if rel == "" {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				kind := KindCreated
				if _, seen := known[rel]; seen {
					kind = KindUpdated
				}
				known[rel] = struct{}{}
				emit(kind, rel)

			case ev.Op&fsnotify.Write != 0:
				known[rel] = struct{}{}
				emit(KindUpdated, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify reports Rename on the old path only; the new
				// path arrives as a separate Create.
				if _, seen := known[rel]; !seen {
					continue
				}
				delete(known, rel)
				emit(KindDeleted, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds dir and all its subdirectories to the watcher and
// records the files already present.
func addDirsRecursive(w *fsnotify.Watcher, root, dir string, known map[string]struct{}) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		if !isTemp(d.Name()) {
			known[relPath(root, p)] = struct{}{}
		}
		return nil
	})
}

func relPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".fusendo-tmp-")
}
