package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a set of config files.
//
// fsnotify watches the parent directory of each file so that editors which
// save by renaming a temporary file over the original are still seen.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger

	mu       sync.RWMutex
	paths    map[string]bool
	handlers []func(path string)

	quit     chan struct{}
	quitOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger replaces slog.Default.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher allocates the underlying fsnotify watcher. Nothing is observed
// until Watch is called.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fs,
		logger: slog.Default(),
		paths:  make(map[string]bool),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path to the watched set.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		w.logger.Error("cannot watch config directory", "dir", filepath.Dir(path), "error", err)
		return err
	}

	w.mu.Lock()
	w.paths[path] = true
	w.mu.Unlock()

	w.logger.Debug("watching config file", "file", path)
	return nil
}

// OnChange registers fn to run, on the watcher goroutine, after every write
// to a watched file.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.handlers = append(w.handlers, fn)
	w.mu.Unlock()
}

// Start dispatches events until Stop is called.
func (w *Watcher) Start() {
	w.logger.Info("config watcher started")
	for {
		select {
		case <-w.quit:
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.logger.Debug("config file changed", "file", ev.Name, "op", ev.Op.String())
				w.notifyCallbacks(ev.Name)
			}
		}
	}
}

// StartAsync runs Start on a new goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop ends Start and releases the fsnotify watcher. Later calls are no-ops.
func (w *Watcher) Stop() error {
	var err error
	w.quitOnce.Do(func() {
		close(w.quit)
		err = w.fs.Close()
		if err != nil {
			w.logger.Error("close config watcher", "error", err)
			return
		}
		w.logger.Info("config watcher stopped")
	})
	return err
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paths[filepath.Clean(ev.Name)]
}

func (w *Watcher) notifyCallbacks(path string) {
	w.mu.RLock()
	handlers := append([]func(string)(nil), w.handlers...)
	w.mu.RUnlock()

	for _, fn := range handlers {
		fn(path)
	}
}
