package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/slangbuild/internal/fsutil"
	"github.com/vk/slangbuild/internal/shader"
)

// watch rebuilds the whole tree after every burst of relevant file events.
// A change to an include can affect any entrypoint file, so there is no
// per-file rebuild. Batches run on this goroutine and never overlap.
func (a *App) watch(ctx context.Context, driver *shader.Driver) error {
	opts := driver.Options()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := a.watchSourceRoot(watcher, opts.SourceRoot); err != nil {
		return err
	}

	// A stopped timer that fires once per quiet period after the last event.
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watcher stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.relevant(watcher, event, opts.SourceRoot, opts.SourceExt) {
				continue
			}
			a.logger.Debug("Change detected.", "path", event.Name, "op", event.Op.String())
			debounce.Reset(a.watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("File watcher error.", "error", err)

		case <-debounce.C:
			if err := a.runBatch(ctx, driver); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				a.logger.Error("Build failed, waiting for changes.", "error", err)
			}
		}
	}
}

// watchSourceRoot adds every directory of the source tree to the watcher.
// While the root does not exist its closest existing ancestor is watched
// instead, so that the root is picked up once it is created.
func (a *App) watchSourceRoot(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		parent := existingAncestor(root)
		if err := watcher.Add(parent); err != nil {
			return fmt.Errorf("failed to watch %s: %w", parent, err)
		}
		a.logger.Warn("Source root does not exist, waiting for it to be created.", "source_root", root, "watching", parent)
		return nil
	}

	dirs, err := fsutil.FindDirs(root)
	if err != nil {
		return fmt.Errorf("failed to scan source root for watching: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	a.logger.Info("👀 Watching for shader changes.", "source_root", root, "directories", len(dirs))
	return nil
}

// relevant reports whether event should trigger a rebuild. Newly created
// directories are added to the watcher and count as a change, since files
// may already have been written into them.
func (a *App) relevant(watcher *fsnotify.Watcher, event fsnotify.Event, root, ext string) bool {
	if !within(root, event.Name) {
		// Only reachable while an ancestor of a missing root is watched.
		if !event.Has(fsnotify.Create) || !within(event.Name, root) {
			return false
		}
		if err := a.watchSourceRoot(watcher, root); err != nil {
			a.logger.Warn("Failed to watch source root.", "source_root", root, "error", err)
			return false
		}
		_, err := os.Stat(root)
		return err == nil
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			subdirs, err := fsutil.FindDirs(event.Name)
			if err != nil {
				a.logger.Warn("Failed to scan new directory.", "path", event.Name, "error", err)
				return true
			}
			for _, dir := range subdirs {
				if err := watcher.Add(dir); err != nil {
					a.logger.Warn("Failed to watch new directory.", "path", dir, "error", err)
				}
			}
			return true
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		// Removed directories have no extension.
		return strings.HasSuffix(event.Name, ext) || filepath.Ext(event.Name) == ""
	}
	return strings.HasSuffix(event.Name, ext)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// existingAncestor returns the closest parent directory of path that exists.
func existingAncestor(path string) string {
	dir := filepath.Dir(path)
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
