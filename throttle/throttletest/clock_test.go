package throttletest_test

import (
	"testing"
	"time"

	"github.com/adamwoolhether/throttler/throttle/throttletest"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClock_AdvanceRunsDueTimersInOrder(t *testing.T) {
	clk := throttletest.NewClock(epoch)

	var got []string
	var at []time.Duration
	record := func(name string) func() {
		return func() {
			got = append(got, name)
			at = append(at, clk.Now().Sub(epoch))
		}
	}

	clk.AfterFunc(30*time.Millisecond, record("b"))
	clk.AfterFunc(10*time.Millisecond, record("a"))
	clk.AfterFunc(30*time.Millisecond, record("c"))
	clk.AfterFunc(time.Second, record("late"))

	clk.Advance(50 * time.Millisecond)

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("fired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fired %v, want %v", got, want)
		}
	}
	if at[0] != 10*time.Millisecond || at[1] != 30*time.Millisecond {
		t.Fatalf("timers saw clock at %v", at)
	}
	if now := clk.Now().Sub(epoch); now != 50*time.Millisecond {
		t.Fatalf("clock at %v after advance, want 50ms", now)
	}
	if n := clk.Timers(); n != 1 {
		t.Fatalf("exp 1 pending timer; got %d", n)
	}
}

func TestClock_Stop(t *testing.T) {
	clk := throttletest.NewClock(epoch)

	fired := false
	tm := clk.AfterFunc(time.Millisecond, func() { fired = true })

	if !tm.Stop() {
		t.Fatal("first Stop should report the timer was active")
	}
	if tm.Stop() {
		t.Fatal("second Stop should report false")
	}

	clk.Advance(time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestClock_SetDoesNotFire(t *testing.T) {
	clk := throttletest.NewClock(epoch)

	fired := 0
	clk.AfterFunc(10*time.Millisecond, func() { fired++ })

	clk.Set(epoch.Add(time.Second))
	if fired != 0 {
		t.Fatal("Set must not run timers")
	}

	clk.Advance(0)
	if fired != 1 {
		t.Fatalf("exp overdue timer to fire on Advance; fired %d", fired)
	}
	if now := clk.Now(); !now.Equal(epoch.Add(time.Second)) {
		t.Fatalf("overdue timer moved the clock back to %v", now)
	}
}

func TestClock_TimerScheduledByCallback(t *testing.T) {
	clk := throttletest.NewClock(epoch)

	var fired []time.Duration
	clk.AfterFunc(10*time.Millisecond, func() {
		fired = append(fired, clk.Now().Sub(epoch))
		clk.AfterFunc(10*time.Millisecond, func() {
			fired = append(fired, clk.Now().Sub(epoch))
		})
	})

	clk.Advance(25 * time.Millisecond)

	if len(fired) != 2 || fired[0] != 10*time.Millisecond || fired[1] != 20*time.Millisecond {
		t.Fatalf("fired at %v, want [10ms 20ms]", fired)
	}
}
