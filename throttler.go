// Package throttler exposes the throttle builders.
// See [github.com/adamwoolhether/throttler/throttle] for the options and
// the full API.
package throttler

import (
	"time"

	"github.com/adamwoolhether/throttler/throttle"
)

// New instantiates a *throttle.Throttler that runs fn at most once per wait
// on the leading edge and once more on the trailing edge.
func New[T any](fn func(T), wait time.Duration, opts ...throttle.Option) (*throttle.Throttler[T], error) {
	return throttle.New(fn, wait, opts...)
}

// Func throttles a callback that takes no arguments and returns the
// throttled function.
func Func(fn func(), wait time.Duration, opts ...throttle.Option) (func(), error) {
	if fn == nil {
		return nil, throttle.ErrNilFunc
	}

	t, err := throttle.New(func(struct{}) { fn() }, wait, opts...)
	if err != nil {
		return nil, err
	}

	return func() { t.Call(struct{}{}) }, nil
}
