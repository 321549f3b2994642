package session

import (
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled task once the delay has passed
// without another Schedule call.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	task  func()
	gen   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending task with task and restarts the delay
func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.task = task
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	task()
}

// stopLocked drops the pending timer; a callback already in flight sees the
// bumped generation and does nothing
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Cancel drops the pending task. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.task != nil
	d.stopLocked()
	d.task = nil
	return pending
}
