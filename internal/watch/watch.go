// Package watch reports changes to the Markdown files of a directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Recursive bool
	Debounce  time.Duration
	// Skip names directories that are never watched, such as the data dir.
	Skip []string
	// Exclude holds doublestar globs on the slash-separated path relative to
	// the watched directory. Events for matching files are dropped.
	Exclude []string
	Logger  *slog.Logger // nil discards logs
}

// Watcher collapses bursts of Markdown file events into single notifications.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	exclude  []string
	debounce time.Duration
	logger   *slog.Logger
}

// New starts watching dir. The caller must call Run or Close.
func New(dir string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		exclude:  opts.Exclude,
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := w.addDirs(dir, opts); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs(dir string, opts Options) error {
	if !opts.Recursive {
		return w.fsw.Add(dir)
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[s] = true
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skip[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls onChange once per settled burst of Markdown file events until
// ctx is done. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fsw.Close()

	// Stop and Reset discard stale ticks (Go 1.23 timer semantics).
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("file event", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case <-timer.C:
			onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher without running it.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant reports whether ev touches a Markdown file that is not excluded.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || !strings.HasSuffix(strings.ToLower(ev.Name), ".md") {
		return false
	}
	return !w.excluded(ev.Name)
}

func (w *Watcher) excluded(path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.exclude {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}
