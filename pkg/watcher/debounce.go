package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default quiet period before a change fires.
const DefaultDebounceDuration = 300 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback after a quiet
// period. Safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Trigger schedules fn to run after the quiet period. A trigger arriving
// before the period elapses resets the clock and replaces the callback.
func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, fn)
}

// Cancel drops any pending callback.
func (db *Debouncer) Cancel() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
