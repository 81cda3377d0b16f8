// Package watch rebuilds on source changes. Changes are debounced into batches and batches
// are handled one at a time.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Func handles one batch of changed paths, sorted.
type Func func(ctx context.Context, changed []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last change before a batch is handled.
	Debounce time.Duration
	// Ignore drops changes to matching paths. Defaults to IgnoreHidden.
	Ignore func(root, path string) bool
}

// Watcher watches a directory tree.
type Watcher struct {
	root string
	opts Options
	fsw  *fsnotify.Watcher
}

// New creates a Watcher and registers root and every non-ignored directory below it.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = IgnoreHidden
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{root: root, opts: opts, fsw: fsw}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls fn for every debounced batch of changes until ctx is done or the watcher is
// closed. Changes made while fn runs are collected into the next batch.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan string)
	batches := make(chan []string)
	go debounce(ctx, changes, batches, w.opts.Debounce)

	logging.Info("watching for changes", logging.Path(w.root))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || w.opts.Ignore(w.root, event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logging.Warn("failed to watch new directory", logging.Path(event.Name), logging.Err(err))
					}
				}
			}
			logging.Debug("change detected", logging.Path(event.Name), logging.Operation(event.Op.String()))
			select {
			case changes <- event.Name:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("file watcher error", logging.Err(err))

		case batch := <-batches:
			fn(ctx, batch)
		}
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.Ignore(w.root, path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// IgnoreHidden ignores paths with a dot-prefixed segment below root and editor backup
// files ending in "~".
func IgnoreHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	if strings.HasSuffix(rel, "~") {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != ".." {
			return true
		}
	}
	return false
}

// debounce collects paths from in and emits them on out, deduplicated and sorted, once no
// new path has arrived for delay. It keeps receiving while a batch waits to be taken.
func debounce(ctx context.Context, in <-chan string, out chan<- []string, delay time.Duration) {
	pending := make(map[string]struct{})
	var ready []string
	var timer *time.Timer
	var fire <-chan time.Time
	var send chan<- []string

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case p, ok := <-in:
			if !ok {
				return
			}
			pending[p] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for _, p := range ready {
				pending[p] = struct{}{}
			}
			ready = slices.Sorted(maps.Keys(pending))
			clear(pending)
			send = out

		case send <- ready:
			ready = nil
			send = nil
		}
	}
}
