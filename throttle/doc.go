// Package throttle limits how often a callback runs.
//
// # Usage
//
// Wrap a callback with [New]; every [Throttler.Call] either runs it right
// away or folds into a single trailing run at the end of the wait window:
//
//	t, err := throttle.New(func(pos int) { redraw(pos) }, 100*time.Millisecond)
//	if err != nil { ... }
//	for pos := range scrollEvents {
//		t.Call(pos)
//	}
//
// Within one window the callback runs at most twice: once on the leading
// edge, on the caller's goroutine, and once on the trailing edge, from a
// timer goroutine. [WithLeading](false) skips the leading run so the first
// call of a quiet period waits for the window to close.
//
// By default the trailing run receives the argument of the call that
// scheduled it. [WithLatestArgs] delivers the last call's argument instead.
//
// # Observability
//
// Fires are traced with [WithTracer] and counted with [WithMeter]; both
// default to no-op providers. Suppressed calls are logged at debug level,
// sampled by [WithDropLogInterval]. A panic on the trailing edge has no
// caller to reach, so it is recovered and logged at error level.
package throttle
