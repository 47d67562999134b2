// Package throttletest provides a manually advanced [throttle.Clock] for
// deterministic tests of code built on a throttler.
//
//	clk := throttletest.NewClock(time.Unix(0, 0))
//	t, _ := throttle.New(fn, 100*time.Millisecond, throttle.WithClock(clk))
//	t.Call(a)
//	clk.Advance(100 * time.Millisecond) // runs due timers synchronously
package throttletest
