// ABOUTME: Cancelable countdown used by logout confirmation and account deletion
// ABOUTME: Ticks once per interval and fires its action when it reaches zero

package countdown

import (
	"sync"
	"time"
)

// Countdown runs an action after a number of ticks unless canceled.
// The action runs at most once.
type Countdown struct {
	onTick func(remaining int)
	onFire func()

	mu        sync.Mutex
	remaining int
	ticker    *time.Ticker
	stopped   bool
	fired     bool
	done      chan struct{}
}

// Start begins a countdown of ticks steps. onTick, when non-nil, receives
// the remaining count after each step; onFire runs when it reaches zero or
// Fire is called.
func Start(ticks int, interval time.Duration, onTick func(remaining int), onFire func()) *Countdown {
	c := &Countdown{
		onTick:    onTick,
		onFire:    onFire,
		remaining: ticks,
		done:      make(chan struct{}),
	}
	if ticks <= 0 {
		c.Fire()
		return c
	}
	c.ticker = time.NewTicker(interval)
	go c.run()
	return c
}

func (c *Countdown) run() {
	for {
		select {
		case <-c.done:
			return
		case <-c.ticker.C:
		}

		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return
		}
		c.remaining--
		remaining := c.remaining
		c.mu.Unlock()

		if remaining <= 0 {
			c.Fire()
			return
		}
		if c.onTick != nil {
			c.onTick(remaining)
		}
	}
}

// Remaining returns the ticks left
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Cancel stops the countdown without running the action. It reports
// whether this call stopped it.
func (c *Countdown) Cancel() bool {
	return c.finish(false)
}

// Fire stops the countdown and runs the action now. It reports whether
// this call ran the action.
func (c *Countdown) Fire() bool {
	return c.finish(true)
}

func (c *Countdown) finish(fire bool) bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	c.stopped = true
	c.fired = fire
	if fire {
		c.remaining = 0
	}
	if c.ticker != nil {
		c.ticker.Stop()
	}
	close(c.done)
	c.mu.Unlock()

	if fire && c.onFire != nil {
		c.onFire()
	}
	return true
}

// Done is closed once the countdown is canceled or fired
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Fired reports whether the action ran
func (c *Countdown) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}
