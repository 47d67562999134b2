package throttletest

import (
	"slices"
	"sync"
	"time"

	"github.com/adamwoolhether/throttler/throttle"
)

// Clock is a [throttle.Clock] whose time only moves when told to.
// Timer callbacks run synchronously inside [Clock.Advance], on the
// goroutine that calls it.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

var _ throttle.Clock = (*Clock)(nil)

// NewClock returns a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// AfterFunc registers f to run once the clock has been advanced by d.
func (c *Clock) AfterFunc(d time.Duration, f func()) throttle.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &timer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)

	return t
}

// Set moves the clock to now without running any timer, which lets a
// test observe a timer that is due but has not fired yet. Moving
// backwards simulates clock skew.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// Advance moves the clock forward by d, running every timer that comes
// due in deadline order. Timers registered by a callback run in the same
// Advance if they fall inside the window.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.remove(next)
		c.mu.Unlock()

		next.fn()
	}
}

// Timers returns the number of registered timers that have not fired or
// been stopped.
func (c *Clock) Timers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// nextDue must be called with c.mu held.
func (c *Clock) nextDue(target time.Time) *timer {
	var next *timer
	for _, t := range c.timers {
		if t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// remove must be called with c.mu held. It reports whether t was registered.
func (c *Clock) remove(t *timer) bool {
	i := slices.Index(c.timers, t)
	if i < 0 {
		return false
	}
	c.timers = slices.Delete(c.timers, i, i+1)
	return true
}

type timer struct {
	clock *Clock
	at    time.Time
	seq   int
	fn    func()
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	return t.clock.remove(t)
}
