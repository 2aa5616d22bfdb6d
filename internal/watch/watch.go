// Package watch reports changes to loaded scan files.
//
// Each file is watched through its parent directory so editors that replace
// files by rename are still seen. Change events are debounced per file and
// queued; the owner drains the queue on its own goroutine.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/ptflview/pkg/log"
)

// DefaultDebounce is the quiet period after the last write to a file before
// it is reported.
const DefaultDebounce = 100 * time.Millisecond

// ErrNotWatched is returned by Remove for unknown paths.
var ErrNotWatched = errors.New("watch: path not watched")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-file quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher queues reload requests for watched files.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	dirs     map[string]int
	timers   map[string]*time.Timer
	pending  []string
	queued   map[string]struct{}
	notify   chan struct{}
	debounce time.Duration
	logger   log.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts a watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		queued:   make(map[string]struct{}),
		notify:   make(chan struct{}, 1),
		debounce: DefaultDebounce,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Add starts watching path. Adding a watched path again is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	w.logger.Debug("watching file", log.String("path", abs))
	return nil
}

// Remove stops watching path and drops any queued reload for it.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return fmt.Errorf("%w: %s", ErrNotWatched, path)
	}
	delete(w.files, abs)
	if t, ok := w.timers[abs]; ok {
		t.Stop()
		delete(w.timers, abs)
	}
	if _, ok := w.queued[abs]; ok {
		delete(w.queued, abs)
		for i, p := range w.pending {
			if p == abs {
				w.pending = append(w.pending[:i], w.pending[i+1:]...)
				break
			}
		}
	}

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.Debug("unwatch directory", log.String("dir", dir), log.Err(err))
		}
	}
	return nil
}

// Watched returns the watched absolute paths, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Notify receives a value whenever the queue becomes non-empty.
func (w *Watcher) Notify() <-chan struct{} {
	return w.notify
}

// Drain returns queued paths in the order they changed and empties the queue.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := w.pending
	w.pending = nil
	w.queued = make(map[string]struct{})
	return out
}

// Close stops the watcher. Queued paths are discarded.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", log.Err(err))
		}
	}
}

// schedule restarts the debounce timer of a watched path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.enqueue(path)
	})
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if _, ok := w.files[path]; !ok {
		w.mu.Unlock()
		return
	}
	if _, ok := w.queued[path]; !ok {
		w.queued[path] = struct{}{}
		w.pending = append(w.pending, path)
	}
	w.mu.Unlock()

	w.logger.Debug("file changed", log.String("path", path))
	select {
	case w.notify <- struct{}{}:
	default:
	}
}
