// Package watcher reloads the viewer when a model's BOM file changes on
// disk. Extraction pipelines rewrite bom_data.json in bursts, so one
// rewrite coalesces into a single notification. fsnotify is the primary
// mechanism with stat polling as fallback for filesystems that do not
// deliver events.
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

// DefaultPollInterval is the default stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnvVar forces polling mode regardless of fsnotify availability.
const ForcePollEnvVar = "BOMVIEW_FORCE_POLL"

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long to coalesce change events.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDur = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.poll = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.force = force }
}

// stamp is the file identity polling compares between ticks. A zero stamp
// means the file did not exist.
type stamp struct {
	mtime time.Time
	size  int64
}

func stampOf(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{mtime: info.ModTime(), size: info.Size()}, nil
}

func (s stamp) differsFrom(old stamp) bool {
	return s.mtime.After(old.mtime) || s.size != old.size
}

// Watcher monitors one BOM file for changes.
type Watcher struct {
	path        string
	debounceDur time.Duration
	poll        time.Duration
	onChange    func()
	onError     func(error)
	force       bool

	debounce *Debouncer
	changes  chan struct{}

	mu      sync.RWMutex
	started bool
	polling bool
	last    stamp
	fs      *fsnotify.Watcher
	cancel  context.CancelFunc
}

// New creates a watcher for the given path. The file does not have to
// exist yet; its creation counts as a change.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		poll:     DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debounce = NewDebouncer(w.debounceDur)
	if w.poll <= 0 {
		w.poll = DefaultPollInterval
	}
	return w, nil
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	st, err := stampOf(w.path)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		st = stamp{}
	}
	w.last = st

	w.polling = w.force || envBool(ForcePollEnvVar)
	if !w.polling {
		w.fs = openFsnotify(w.path)
		w.polling = w.fs == nil
	}

	var ctx context.Context
	ctx, w.cancel = context.WithCancel(context.Background())
	if w.polling {
		go w.pollLoop(ctx)
	} else {
		go w.eventLoop(ctx, w.fs)
	}

	w.started = true
	return nil
}

// Stop halts watching. The change channel stays open: closing it would
// race a pending notification, and Stop only runs at teardown, so a
// blocked receiver is reclaimed with the process.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fs != nil {
		w.fs.Close()
		w.fs = nil
	}
	w.debounce.Cancel()
	w.started = false
}

// Changed returns a channel that receives when the file changes, as an
// alternative to the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changes
}

// IsPolling reports whether the watcher is in polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration {
	return w.poll
}

// openFsnotify watches the file's parent directory; the extractor replaces
// the BOM atomically via rename, which only the directory watch sees
// reliably. Returns nil when fsnotify cannot be set up.
func openFsnotify(path string) *fsnotify.Watcher {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil
	}
	return fs
}

func (w *Watcher) eventLoop(ctx context.Context, fs *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fs.Events:
			if !ok {
				return
			}
			// The directory watch reports siblings too.
			if filepath.Base(ev.Name) != name {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debounce.Trigger(w.emit)
			}

		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	tick := time.NewTicker(w.poll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	st, err := stampOf(w.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			w.mu.RLock()
			existed := !w.last.mtime.IsZero()
			w.mu.RUnlock()
			if existed {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	changed := st.differsFrom(w.last)
	if changed {
		w.last = st
	}
	w.mu.Unlock()

	if changed {
		w.debounce.Trigger(w.emit)
	}
}

// emit fires the callback and signals the change channel. The send is
// non-blocking so a slow receiver cannot back up notifications.
func (w *Watcher) emit() {
	w.mu.RLock()
	live := w.started
	w.mu.RUnlock()
	if !live {
		return
	}

	w.onChange()

	select {
	case w.changes <- struct{}{}:
	default:
	}
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
