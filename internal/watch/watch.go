// Package watch observes the repository index and triggers revalidation.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Callback receives the freshly observed index stat after a change. The
// host is expected to validate its entries against the stat and then
// refresh the stat cache with it.
type Callback func(st os.FileInfo)

// Watcher monitors the repository metadata directory for index writes.
// Git replaces the index atomically, so the directory is watched rather
// than the file itself.
type Watcher struct {
	fsw       *fsnotify.Watcher
	indexPath string
	debounce  time.Duration
	cb        Callback
	logger    *zap.Logger
	done      chan struct{}
	finished  chan struct{}
	started   bool
}

// New creates a watcher for the index at indexPath.
func New(indexPath string, debounce time.Duration, cb Callback, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsw:       fsw,
		indexPath: indexPath,
		debounce:  debounce,
		cb:        cb,
		logger:    logger,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled on a
// background goroutine until Stop.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(filepath.Dir(w.indexPath)); err != nil {
		return err
	}
	w.started = true
	go w.eventLoop()
	return nil
}

// Stop stops the watcher. It does not return until the event loop and
// any in-flight callback have finished, so the caller may safely tear
// down state the callback touches afterwards.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsw.Close()
	if w.started {
		<-w.finished
	}
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.finished)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isIndexEvent(event) {
				continue
			}
			// Coalesce the write/rename burst of one index update.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("index watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) isIndexEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.indexPath) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) notify() {
	st, err := os.Stat(w.indexPath)
	if err != nil {
		// Index removed mid-update; the next write will re-trigger.
		return
	}
	if w.cb != nil {
		w.cb(st)
	}
}
