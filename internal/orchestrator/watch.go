package orchestrator

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce batches the event bursts editors and generators
// produce into a single rebuild.
const defaultDebounce = 500 * time.Millisecond

// Watcher re-runs the pipeline when files under the source tree change.
type Watcher struct {
	// Root is the directory tree to watch.
	Root string
	// Skip lists directory basenames excluded from watching anywhere in
	// the tree (VCS metadata).
	Skip []string
	// SkipPaths lists directory paths excluded from watching, matched by
	// prefix so nested or absolute build trees are covered. Paths must be
	// in the same form (relative or absolute) as Root.
	SkipPaths []string
	// Debounce is how long to wait after the last event before rebuilding.
	Debounce time.Duration
	// Out receives status lines. Defaults to os.Stdout.
	Out io.Writer
}

// Watch blocks, invoking rebuild after each debounced batch of file
// changes, until the context is canceled.
func (w *Watcher) Watch(ctx context.Context, rebuild func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce == 0 {
		debounce = defaultDebounce
	}
	out := w.Out
	if out == nil {
		out = os.Stdout
	}

	// The timer is created stopped and armed by the first event.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	fmt.Fprintf(out, "watching %s for changes\n", w.Root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.skipped(event.Name) {
				continue
			}
			// Watch directories created after startup.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(watcher, event.Name)
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "warning: watch error: %v\n", err)

		case <-timer.C:
			fmt.Fprintln(out, "change detected, re-running build and check")
			rebuild(ctx)
		}
	}
}

// addTree registers root and every directory below it, honoring Skip.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipped(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// skipped reports whether the path lives under a skipped directory.
func (w *Watcher) skipped(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, skip := range w.Skip {
		for _, part := range parts {
			if part == skip {
				return true
			}
		}
	}
	for _, skip := range w.SkipPaths {
		if underPath(path, skip) {
			return true
		}
	}
	return false
}

// underPath reports whether path equals root or lives below it.
func underPath(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
