package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors the source tree and rebuilds the index after changes.
type Watcher struct {
	agg      *Aggregator
	watcher  *fsnotify.Watcher
	delay    time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	build    sync.Mutex // serializes rebuilds
	closed   bool
	onBuild  func(*Report)
	onError  func(error)
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the aggregator's source tree. onBuild is called after
// every successful rebuild; onError receives rebuild failures and fatal
// watcher errors.
func NewWatcher(agg *Aggregator, onBuild func(*Report), onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		agg:     agg,
		watcher: fw,
		delay:   DefaultDebounce,
		onBuild: onBuild,
		onError: onError,
		done:    make(chan struct{}),
	}

	if err := w.addTree(agg.Source()); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce changes the settle delay. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.delay = d
	w.mu.Unlock()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %s", ErrSourceMissing, root)
			}
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Start begins watching for changes. Blocks until Stop is called or the
// underlying watcher fails.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.fatal(fmt.Errorf("watch %s: %w", w.agg.Source(), err))
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// New directories need their own watch.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if err := w.addTree(path); err != nil {
					w.report(err)
				}
				w.schedule()
			}
		}
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			// Could be a directory of articles.
			w.schedule()
		}
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.schedule()
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.scheduled)
}

// scheduled runs a debounced rebuild unless the watcher stopped while the
// timer was firing.
func (w *Watcher) scheduled() {
	w.build.Lock()
	defer w.build.Unlock()

	if w.isClosed() {
		return
	}
	if _, err := w.rebuild(); err != nil {
		w.report(err)
	}
}

func (w *Watcher) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Rebuild runs the aggregator once and notifies onBuild.
func (w *Watcher) Rebuild() (*Report, error) {
	w.build.Lock()
	defer w.build.Unlock()
	return w.rebuild()
}

func (w *Watcher) rebuild() (*Report, error) {
	report, err := w.agg.Run()
	if err != nil {
		return nil, err
	}
	if w.onBuild != nil {
		w.onBuild(report)
	}
	return report, nil
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

func (w *Watcher) fatal(err error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.report(err)
}

// Stop stops the watcher and waits for a rebuild already in progress to
// finish. It must not be called from onBuild or onError.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		close(w.done)
		err = w.watcher.Close()

		w.build.Lock() //nolint:staticcheck // waits for an in-flight rebuild
		w.build.Unlock()
	})
	return err
}
