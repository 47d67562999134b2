package throttle

import (
	"testing"
	"time"
)

// lateClock hands out timers that can never be stopped, as if the timer
// goroutine had already started when Stop was called.
type lateClock struct {
	now   time.Time
	funcs []func()
}

func (c *lateClock) Now() time.Time { return c.now }

func (c *lateClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.funcs = append(c.funcs, f)
	return lateTimer{}
}

type lateTimer struct{}

func (lateTimer) Stop() bool { return false }

func TestFire_StaleTimerIgnored(t *testing.T) {
	clk := &lateClock{now: time.Unix(0, 0)}

	var got []string
	th, err := New(func(s string) { got = append(got, s) }, 100*time.Millisecond, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	th.Call("a")
	clk.now = clk.now.Add(30 * time.Millisecond)
	th.Call("b")

	clk.now = clk.now.Add(200 * time.Millisecond)
	th.Call("c")

	if len(clk.funcs) != 1 {
		t.Fatalf("exp one scheduled timer; got %d", len(clk.funcs))
	}

	// The cancelled timer runs anyway.
	clk.funcs[0]()

	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("exp [a c]; got %v", got)
	}
	if th.stats.Trailing != 0 || th.stats.Cancelled != 1 {
		t.Fatalf("unexpected stats: %+v", th.stats)
	}
}

func TestFire_StaleAfterReschedule(t *testing.T) {
	clk := &lateClock{now: time.Unix(0, 0)}

	var got []string
	th, err := New(func(s string) { got = append(got, s) }, 100*time.Millisecond, WithClock(clk))
	if err != nil {
		t.Fatal(err)
	}

	th.Call("a")
	clk.now = clk.now.Add(10 * time.Millisecond)
	th.Call("b")
	th.Cancel()
	th.Call("c")
	clk.now = clk.now.Add(10 * time.Millisecond)
	th.Call("d")

	if len(clk.funcs) != 2 {
		t.Fatalf("exp two scheduled timers; got %d", len(clk.funcs))
	}

	clk.funcs[0]()
	clk.funcs[1]()

	if len(got) != 3 || got[0] != "a" || got[1] != "c" || got[2] != "d" {
		t.Fatalf("exp [a c d]; got %v", got)
	}
}
