// ABOUTME: Keyed debouncer shared by every filterable screen
// ABOUTME: Each key keeps at most one pending call; a new trigger restarts the delay

package listing

import (
	"sync"
	"time"
)

// Debouncer delays calls per key until input settles
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer creates a debouncer. A zero delay runs calls immediately.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, timers: map[string]*time.Timer{}}
}

// Trigger schedules fn for key, replacing any pending call for the same key
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	if d.delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
	d.mu.Unlock()
}

// Cancel drops the pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Pending reports whether key has a scheduled call
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending call; later triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
