// Package schedule provides cancellable deferred actions.
//
// A [Debouncer] holds at most one pending callback. Scheduling a new one
// replaces the old; [Debouncer.Cancel] drops it. The viewer and the session
// use it for scroll-to-match after a search, so that a later action (another
// search, a clear, a regenerate) cancels a stale pending focus.
package schedule

import (
	"sync"
	"time"
)

// DefaultDelay is used when a Debouncer is created with a zero delay.
const DefaultDelay = 100 * time.Millisecond

// Debouncer runs the most recently scheduled callback once its delay elapses.
type Debouncer struct {
	delay    time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
	callback func()
}

// NewDebouncer creates a Debouncer. A zero delay means DefaultDelay;
// a negative delay runs callbacks only through Flush.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay == 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.delay < 0 {
		return
	}

	d.timer = time.AfterFunc(d.delay, func() {
		if cb := d.take(seq); cb != nil {
			cb()
		}
	})
}

// take claims the pending callback if seq is still current.
// A timer that fired after Stop lost the race sees a newer seq and does nothing.
func (d *Debouncer) take(seq uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq || d.callback == nil {
		return nil
	}
	cb := d.callback
	d.callback = nil
	d.timer = nil
	return cb
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.callback = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs the pending callback now, on the calling goroutine.
// It reports whether a callback ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	d.seq++
	cb := d.callback
	d.callback = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if cb == nil {
		return false
	}
	cb()
	return true
}

// Pending reports whether a callback is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callback != nil
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
