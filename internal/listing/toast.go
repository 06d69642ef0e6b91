// ABOUTME: Single-slot toast notifications with auto-dismiss
// ABOUTME: A new toast replaces the visible one and restarts the dismiss timer

package listing

import (
	"sync"
	"time"
)

// ToastKind selects the toast style
type ToastKind string

const (
	ToastError   ToastKind = "error"
	ToastSuccess ToastKind = "success"
)

// Toast is a transient message
type Toast struct {
	Message string
	Kind    ToastKind
}

// Toaster holds at most one visible toast
type Toaster struct {
	ttl    time.Duration
	notify func()

	mu      sync.Mutex
	current *Toast
	gen     uint64
	timer   *time.Timer
	closed  bool
}

// NewToaster creates a toaster whose toasts dismiss after ttl. notify, when
// non-nil, is called after every change so a UI can redraw.
func NewToaster(ttl time.Duration, notify func()) *Toaster {
	return &Toaster{ttl: ttl, notify: notify}
}

// Error shows an error toast
func (t *Toaster) Error(msg string) { t.Show(Toast{Message: msg, Kind: ToastError}) }

// Success shows a success toast
func (t *Toaster) Success(msg string) { t.Show(Toast{Message: msg, Kind: ToastSuccess}) }

// Show replaces the visible toast
func (t *Toaster) Show(toast Toast) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.gen++
	gen := t.gen
	t.current = &toast
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.ttl > 0 {
		t.timer = time.AfterFunc(t.ttl, func() { t.expire(gen) })
	}
	t.mu.Unlock()
	t.changed()
}

func (t *Toaster) expire(gen uint64) {
	t.mu.Lock()
	if t.gen != gen || t.current == nil {
		t.mu.Unlock()
		return
	}
	t.current = nil
	t.mu.Unlock()
	t.changed()
}

// Dismiss hides the visible toast
func (t *Toaster) Dismiss() {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	t.gen++
	t.current = nil
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	t.changed()
}

// Current returns the visible toast
func (t *Toaster) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Toast{}, false
	}
	return *t.current, true
}

// Close stops the dismiss timer; later toasts are ignored
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.current = nil
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Toaster) changed() {
	if t.notify != nil {
		t.notify()
	}
}
