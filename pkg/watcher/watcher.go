// Package watcher monitors a repository directory for external edits to
// file-backed project content, so open previews can be refreshed without a
// manual reload.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrDirRemoved     = errors.New("watched directory was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked when a file under the directory
// changes. The callback receives the changed path.
func WithOnChange(fn func(path string)) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// Watcher monitors a directory for changes using fsnotify with a polling
// fallback. Internal state under .lineweave is ignored so graph saves never
// trigger reloads.
type Watcher struct {
	dir              string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(path string)
	onError          func(error)
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	lastScan    map[string]time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan string
}

// New creates a watcher for the given repository directory.
func New(dir string, opts ...Option) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:              absDir,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func(string) {},
		onError:          func(error) {},
		changeCh:         make(chan string, 8),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching the directory for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.useFallback = w.forcePoll || envBool("LINEWEAVE_FORCE_POLL")
	w.lastScan = nil

	if info, err := os.Stat(w.dir); err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		return err
	} else if !info.IsDir() {
		return errors.New("watch target is not a directory")
	}

	if !w.useFallback {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err := fsw.Add(w.dir); err != nil {
				fsw.Close()
				w.useFallback = true
			} else {
				w.fsWatcher = fsw
				go w.watchFsnotify()
			}
		} else {
			w.useFallback = true
		}
	}

	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// Stop stops watching. The change channel is intentionally left open:
// closing it would race with notify() senders, and Stop is only called at
// program exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives changed file paths.
// This is an alternative to using the OnChange callback.
func (w *Watcher) Changed() <-chan string {
	return w.changeCh
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// ignored reports whether a path belongs to internal state rather than
// project content.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return strings.Contains(path, string(filepath.Separator)+".lineweave"+string(filepath.Separator)) ||
		strings.HasSuffix(path, string(filepath.Separator)+".lineweave")
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify() {
	// Capture channel references to avoid race with Stop() setting fsWatcher to nil
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if ignored(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0 && event.Name == w.dir:
				w.onError(ErrDirRemoved)

			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				name := event.Name
				w.debouncer.Trigger(func() { w.notify(name) })
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// watchPolling monitors using periodic directory scans.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			current, err := w.scan()
			if err != nil {
				if os.IsNotExist(err) {
					w.onError(ErrDirRemoved)
				} else if os.IsPermission(err) {
					w.onError(ErrPermission)
				} else {
					w.onError(err)
				}
				continue
			}

			w.mu.Lock()
			prev := w.lastScan
			w.lastScan = current
			w.mu.Unlock()

			if prev == nil {
				continue
			}
			for path, mtime := range current {
				if old, ok := prev[path]; !ok || mtime.After(old) {
					p := path
					w.debouncer.Trigger(func() { w.notify(p) })
				}
			}
		}
	}
}

func (w *Watcher) scan() (map[string]time.Time, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if e.IsDir() || ignored(path) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out[path] = info.ModTime()
	}
	return out, nil
}

// notify invokes the onChange callback and signals the change channel.
func (w *Watcher) notify(path string) {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Best-effort guard against callbacks after Stop(); callbacks are
	// idempotent so the small race window is harmless.
	if !started {
		return
	}

	w.onChange(path)

	// Non-blocking send to change channel
	select {
	case w.changeCh <- path:
	default:
	}
}
