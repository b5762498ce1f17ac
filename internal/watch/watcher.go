// Package watch reports changes below fixture roots.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of events is coalesced
const DefaultDebounce = 200 * time.Millisecond

// Handler receives the paths changed during one debounce window
type Handler func(paths []string)

// Watcher watches directory trees; fsnotify is not recursive, so every
// directory is added and newly created directories are added as they appear.
type Watcher struct {
	watcher  *fsnotify.Watcher
	skipDirs map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher; skipDirs are directory names never watched
func New(skipDirs []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = true
	}
	return &Watcher{watcher: fw, skipDirs: skip, debounce: DefaultDebounce, logger: logger}, nil
}

// SetDebounce changes the coalescing window
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Add watches path; directories are watched with all their subdirectories
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) skip(name string) bool {
	return w.skipDirs[name]
}

// Run delivers changes to handler until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.watcher.Close()

	var pending []string
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.skip(info.Name()) {
					if err := w.Add(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "dir", event.Name, "err", err)
					}
				}
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending = append(pending, event.Name)
		case <-timer.C:
			changed := pending
			pending = nil
			handler(dedupe(changed))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watch events dropped", "err", err)
				continue
			}
			return err
		}
	}
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
