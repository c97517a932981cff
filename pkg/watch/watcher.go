// Package watch re-runs analysis when source files change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	logging "gopkg.in/op/go-logging.v1"

	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/language"
)

var log = logging.MustGetLogger("watch")

// DefaultDebounce is how long a file must stay unchanged before it is reported.
const DefaultDebounce = 500 * time.Millisecond

const pollInterval = 100 * time.Millisecond

// Callback receives the files whose writes have settled since the last call,
// sorted by path. It is never called with an empty slice.
type Callback func(paths []string)

// Watcher monitors a directory tree and reports settled changes to source files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	callback  Callback
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		path:      path,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function to call when a file changes.
func (w *Watcher) SetCallback(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = cb
}

// Start watches until ctx is done. Callbacks run one at a time on a single
// goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}
	log.Infof("watching %d directories under %s", len(w.fsWatcher.WatchList()), w.path)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch error: %v", err)
		}
	}
}

// addTree registers root and every non-excluded directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) excludedDir(name string) bool {
	for _, excluded := range w.config.Exclude.Dirs {
		if name == excluded {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A file deleted or moved away before it settled has nothing to review.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if w.config.ShouldExclude(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				log.Warningf("watch %s: %v", path, err)
			}
			return
		}
	}

	if !language.Known(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reports files that have been stable for the debounce period.
func (w *Watcher) processPending() {
	ready, cb := w.takeReady(time.Now())
	if cb == nil || len(ready) == 0 {
		return
	}
	log.Debugf("%d file(s) settled: %v", len(ready), ready)
	cb(ready)
}

func (w *Watcher) takeReady(now time.Time) ([]string, Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	sort.Strings(ready)
	return ready, w.callback
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories currently registered.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
