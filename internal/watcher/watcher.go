// Package watcher reacts to changes of schema files and JCSDL import directories.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches directories and invokes callbacks when matching files change.
// Subdirectories are not followed.
type Watcher struct {
	dirs        []string
	match       func(path string) bool
	onChange    func(path string)
	onRemove    func(path string)
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over dirs. match selects the files of interest
// (nil = all). onChange runs once a created or written file has settled;
// onRemove runs when a file is removed or renamed away. Either may be nil.
func NewWatcher(dirs []string, match func(path string) bool, onChange, onRemove func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dirs:        dirs,
		match:       match,
		onChange:    onChange,
		onRemove:    onRemove,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ForFile watches the directory holding path and calls onChange when path itself
// is written or replaced. Editors that save through a rename are covered because
// the directory, not the file, is watched.
func ForFile(path string, onChange func(path string), opts ...WatcherOption) *Watcher {
	clean := filepath.Clean(path)
	return NewWatcher([]string{filepath.Dir(clean)}, MatchFile(clean), onChange, nil, opts...)
}

// MatchFile matches exactly one path.
func MatchFile(path string) func(string) bool {
	clean := filepath.Clean(path)
	return func(p string) bool { return filepath.Clean(p) == clean }
}

// MatchExtensions matches files by extension, case-insensitively, with or
// without the leading dot. No extensions matches everything.
func MatchExtensions(extensions ...string) func(string) bool {
	return func(path string) bool {
		if len(extensions) == 0 {
			return true
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		for _, e := range extensions {
			if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
				return true
			}
		}
		return false
	}
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
// Missing directories are created.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.Strings("dirs", w.dirs))
	for _, dir := range w.dirs {
		if err := w.addDirLocked(dir); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	events, errs := watcher.Events, watcher.Errors
	w.mu.Unlock()
	go w.run(ctx, events, errs)
	return nil
}

func (w *Watcher) addDirLocked(dir string) error {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return w.watcher.Add(dir)
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !w.matches(path) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return
		}
		w.debounceChange(path)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	return w.match == nil || w.match(path)
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.logger.Debug("watcher file settled", zap.String("path", path))
		if w.onChange != nil {
			w.onChange(path)
		}
	})
	w.debounceMap[path] = t
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// SyncExistingFiles calls onChange for every matching file already present in the
// watched directories. Call it after Start to pick up files written while stopped.
func (w *Watcher) SyncExistingFiles() {
	if w.onChange == nil {
		return
	}
	for _, dir := range w.Directories() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Debug("watcher sync failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() || !w.matches(path) {
				continue
			}
			w.onChange(path)
		}
	}
}

// Directories returns a copy of the watched directories.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.dirs...)
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
