package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/h-ikeda/strust/internal/toolchain"
)

// Handler receives every raw change event; filtering is the handler's job so
// that irrelevant paths stay a guaranteed no-op in one place.
type Handler interface {
	OnWatchedFileChanged(ctx context.Context, path string) (toolchain.Outcome, bool, error)
}

// Watcher is the host-integration adapter for continuous watch mode. It
// monitors the crate directory recursively via fsnotify and forwards change
// events to the handler sequentially, so invocations inherit the handler's
// ordering.
type Watcher struct {
	root    string
	handler Handler
	log     *slog.Logger
	fsw     *fsnotify.Watcher
}

func New(root string, handler Handler, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{root: root, handler: handler, log: log, fsw: fsw}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// ignoredDirs are build outputs inside the crate dir. Cargo's target tree
// can contain generated source files, so watching it would loop: build
// writes a file, the write triggers a build.
var ignoredDirs = map[string]bool{
	"target": true,
	"pkg":    true,
	".git":   true,
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && ignoredDirs[d.Name()] {
			return fs.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run blocks until ctx is cancelled or the underlying watcher closes. A
// failed rebuild is reported and the session keeps running; the previous
// artifact stays on disk until a later change succeeds.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn("watch new directory", "path", event.Name, "err", err)
			}
			return
		}
	}

	outcome, matched, err := w.handler.OnWatchedFileChanged(ctx, event.Name)
	if err != nil {
		w.log.Error("toolchain could not be launched", "path", event.Name, "err", err)
		return
	}
	if matched && !outcome.Succeeded() {
		w.log.Warn("rebuild failed, previous artifact kept",
			"path", event.Name, "exit_code", outcome.ExitCode)
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
