package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/ctxlog"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

// Debounce is how long Watch waits after the last event before re-checking.
var Debounce = 300 * time.Millisecond

// Watch runs the check once and again whenever the registry, the ledger or
// the routes and modules directories change, until ctx is done. Every result
// is handed to onReport.
func Watch(ctx context.Context, root string, cfg *config.ProjectConfig, onReport func(*Report, error)) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchDirs := []string{
		root,
		filepath.Join(root, filepath.FromSlash(filepath.Dir(cfg.Paths.Registry))),
		filepath.Join(root, filepath.FromSlash(filepath.Dir(cfg.Ledger.State))),
		filepath.Join(root, filepath.FromSlash(cfg.Paths.RoutesDir)),
	}
	for _, dir := range watchDirs {
		addDirectory(ctx, watcher, dir)
	}
	addDirectoryRecursively(ctx, watcher, filepath.Join(root, filepath.FromSlash(cfg.Paths.ModulesDir)))

	runOnce := func() {
		onReport(Run(fsguard.New(root, fsguard.Options{}), cfg))
	}
	runOnce()

	timer := time.NewTimer(Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addDirectoryRecursively(ctx, watcher, event.Name)
				}
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(Debounce)

		case <-timer.C:
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}

func addDirectory(ctx context.Context, watcher *fsnotify.Watcher, dir string) {
	if err := watcher.Add(dir); err != nil {
		ctxlog.FromContext(ctx).Debug("could not watch directory", "dir", dir, "error", err)
	}
}

// addDirectoryRecursively adds a directory and all its subdirectories to the
// watcher; fsnotify does not follow subdirectories on its own.
func addDirectoryRecursively(ctx context.Context, watcher *fsnotify.Watcher, root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			addDirectory(ctx, watcher, path)
		}
		return nil
	})
}
