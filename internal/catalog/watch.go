package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a catalog override file into a Catalog whenever it changes.
// Reloads merge, so entries removed from the file keep their last value until
// restart.
type Watcher struct {
	cat      *Catalog
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	onReload func(error)

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// WatchOption configures a Watcher
type WatchOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadHook registers fn to run after every reload attempt
func WithReloadHook(fn func(error)) WatchOption {
	return func(w *Watcher) { w.onReload = fn }
}

// Watch starts watching path. The parent directory is watched so that
// editors which replace the file on save are still picked up.
func Watch(cat *Catalog, path string, logger *slog.Logger, opts ...WatchOption) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		cat:      cat,
		path:     abs,
		watcher:  fw,
		debounce: defaultDebounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.reload)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) reload() {
	err := w.cat.LoadFile(w.path)
	if err != nil {
		w.logger.Warn("catalog reload failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("catalog reloaded", "path", w.path, "entries", w.cat.Len())
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

// Close stops watching. Pending reloads are cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
