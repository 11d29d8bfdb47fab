// Package watcher logs changes to workbook files in the data directory.
//
// The API holds no cross-request state, so a file replaced on disk
// between two page requests silently changes totals and row contents
// mid-pagination. That is accepted behavior; this watcher exists so the
// moment of change at least shows up in the server logs.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceInterval = 400 * time.Millisecond

// Watcher watches one data directory and logs workbook file changes.
type Watcher struct {
	dir    string
	ext    string
	logger *zap.Logger

	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	pending  map[string]*time.Timer
	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher for dir. Only files with extension ext are
// reported; lock artifacts ("~$" prefix) are ignored.
func New(dir, ext string, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:     dir,
		ext:     ext,
		logger:  logger,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching data directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, "~$") || !strings.EqualFold(filepath.Ext(name), w.ext) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		// Writes arrive in bursts while a file is saved; log once per burst.
		w.debounce(name, func() {
			w.logger.Info("data file changed", zap.String("file", name))
		})
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelPending(name)
		w.logger.Info("data file removed", zap.String("file", name))
	}
}

func (w *Watcher) debounce(name string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[name]; ok {
		t.Stop()
	}
	w.pending[name] = time.AfterFunc(debounceInterval, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		fn()
	})
}

func (w *Watcher) cancelPending(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[name]; ok {
		t.Stop()
		delete(w.pending, name)
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		close(w.done)
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		for name, t := range w.pending {
			t.Stop()
			delete(w.pending, name)
		}
	})
}
