package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is how long change events are coalesced before
// the callback fires. Extraction runs rewrite the BOM in several bursts;
// half a second covers them without making reloads feel sluggish.
const DefaultDebounceDuration = 500 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback invocation after a
// quiet period. Each Trigger restarts the timer; only the last callback
// passed wins.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period. Durations
// at or below zero fall back to DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the configured quiet period.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Trigger schedules fn to run after the quiet period, replacing any
// previously scheduled callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
