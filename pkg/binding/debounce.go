package binding

import (
	"sync"
	"time"
)

// DefaultDelay is the keyup debounce used when none is configured.
const DefaultDelay = 250 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests swap it for a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer runs only the last of a burst of triggers, once the delay
// passed without a new one.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu      sync.Mutex
	timer   Timer
	pending func()
	seq     uint64
}

// NewDebouncer creates a debouncer. A nil clock uses the wall clock.
func NewDebouncer(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = realClock{}
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay, clock: clock}
}

// Trigger (re)starts the delay and replaces the pending callback with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// a timer that lost the race against Stop must not run a newer callback
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = nil
	d.seq++
}

// Flush runs the pending callback right away.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.pending = nil
	d.seq++
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is waiting for the delay.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
