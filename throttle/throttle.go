package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulbellamy/ratecounter"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	outcomeLeading    = "leading"
	outcomeScheduled  = "scheduled"
	outcomeSuppressed = "suppressed"
)

// Throttler wraps a callback so it runs at most once per wait interval
// on the leading edge, plus at most once more on the trailing edge for
// calls made inside the interval.
//
// A Throttler is safe for concurrent use. The callback is never run
// while internal state is locked, so it may call back into the Throttler.
type Throttler[T any] struct {
	fn         func(T)
	wait       time.Duration
	leading    bool
	latestArgs bool
	clock      Clock
	logFn      func() *slog.Logger
	tracer     trace.Tracer
	ins        *instruments
	dropLog    *rate.Sometimes
	callRate   *ratecounter.RateCounter
	id         string

	mu      sync.Mutex
	last    time.Time
	hasLast bool
	timer   Timer
	gen     uint64
	pending T
	link    trace.Link
	stats   Stats
}

// New returns a Throttler that forwards calls to fn at most once per wait.
// A zero wait lets every call through.
func New[T any](fn func(T), wait time.Duration, optFns ...Option) (*Throttler[T], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if wait < 0 {
		return nil, fmt.Errorf("wait[%s]: %w", wait, ErrNegativeWait)
	}

	opts := defaultOptions()
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying throttle option: %w", err)
		}
	}

	t := &Throttler[T]{
		fn:         fn,
		wait:       wait,
		leading:    opts.leading,
		latestArgs: opts.latestArgs,
		clock:      opts.clock,
		tracer:     opts.tracer,
		dropLog:    &rate.Sometimes{Interval: opts.dropLogInterval},
		callRate:   ratecounter.NewRateCounter(time.Second),
		id:         uuid.NewString(),
	}

	t.logFn = func() *slog.Logger {
		if opts.logger != nil {
			return opts.logger
		}
		return slog.Default()
	}

	if t.tracer == nil {
		t.tracer = defaultTracer()
	}

	ins, err := newInstruments(opts.meter, t.id)
	if err != nil {
		return nil, fmt.Errorf("configuring metrics: %w", err)
	}
	t.ins = ins

	return t, nil
}

// FromConfig validates cfg and builds a Throttler from it. Options given
// in optFns are applied after the ones derived from cfg.
func FromConfig[T any](fn func(T), cfg Config, optFns ...Option) (*Throttler[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(optFns)+3)
	if cfg.Leading != nil {
		opts = append(opts, WithLeading(*cfg.Leading))
	}
	if cfg.LatestArgs {
		opts = append(opts, WithLatestArgs())
	}
	if cfg.DropLogInterval > 0 {
		opts = append(opts, WithDropLogInterval(cfg.DropLogInterval))
	}
	opts = append(opts, optFns...)

	return New(fn, cfg.Wait, opts...)
}

// ID returns the identifier used for this Throttler in logs, spans and metrics.
func (t *Throttler[T]) ID() string {
	return t.id
}

// Call is CallContext with a background context.
func (t *Throttler[T]) Call(arg T) {
	t.CallContext(context.Background(), arg)
}

// CallContext asks the Throttler to run the callback with arg.
//
// If the wait interval since the last fire has elapsed, the callback runs
// synchronously on the caller's goroutine and any pending trailing fire is
// cancelled. Otherwise a trailing fire is scheduled for when the interval
// closes, unless one is already pending, in which case the call is
// suppressed.
//
// ctx parents the leading-fire span and is linked from the trailing-fire
// span; it is not passed to the callback.
func (t *Throttler[T]) CallContext(ctx context.Context, arg T) {
	t.callRate.Incr(1)

	t.mu.Lock()
	now := t.clock.Now()
	t.stats.Calls++

	if !t.hasLast && !t.leading {
		t.last = now
		t.hasLast = true
	}

	// remaining > wait means the clock went backwards.
	remaining := t.wait - now.Sub(t.last)
	if !t.hasLast || remaining <= 0 || remaining > t.wait {
		if t.timer != nil {
			t.stopTimer()
		}
		t.last = now
		t.hasLast = true
		t.stats.Leading++
		t.mu.Unlock()

		t.ins.call(ctx, outcomeLeading)
		t.invoke(ctx, edgeLeading, arg, trace.Link{})
		return
	}

	if t.timer == nil {
		t.pending = arg
		t.link = trace.LinkFromContext(ctx)
		t.gen++
		gen := t.gen
		t.timer = t.clock.AfterFunc(remaining, func() { t.fire(gen) })
		t.mu.Unlock()

		t.ins.call(ctx, outcomeScheduled)
		t.logFn().Debug("throttle trailing fire scheduled", "throttler", t.id, "remaining", remaining.String())
		return
	}

	if t.latestArgs {
		t.pending = arg
		t.link = trace.LinkFromContext(ctx)
	}
	t.stats.Suppressed++
	suppressed := t.stats.Suppressed
	t.mu.Unlock()

	t.ins.call(ctx, outcomeSuppressed)
	t.ins.suppress(ctx)
	t.dropLog.Do(func() {
		t.logFn().Debug("throttle call suppressed", "throttler", t.id, "suppressed", suppressed)
	})
}

// Cancel stops a pending trailing fire and forgets the last fire time,
// so the next call starts a fresh quiet period.
func (t *Throttler[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.stopTimer()
	}
	t.hasLast = false
	t.last = time.Time{}
}

// Pending reports whether a trailing fire is scheduled.
func (t *Throttler[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil
}

// Stats returns a snapshot of the Throttler's counters.
func (t *Throttler[T]) Stats() Stats {
	t.mu.Lock()
	s := t.stats
	t.mu.Unlock()

	s.CallRate = t.callRate.Rate()
	return s
}

// stopTimer must be called with t.mu held and t.timer set. Bumping gen
// invalidates a timer callback that is already running and lost the race.
func (t *Throttler[T]) stopTimer() {
	t.timer.Stop()
	t.timer = nil
	t.gen++

	var zero T
	t.pending = zero
	t.link = trace.Link{}
	t.stats.Cancelled++
}

// fire is the trailing-edge timer callback.
func (t *Throttler[T]) fire(gen uint64) {
	t.mu.Lock()
	if t.timer == nil || gen != t.gen {
		t.mu.Unlock()
		return
	}

	if t.leading {
		t.last = t.clock.Now()
		t.hasLast = true
	} else {
		t.last = time.Time{}
		t.hasLast = false
	}
	t.timer = nil

	arg := t.pending
	link := t.link
	var zero T
	t.pending = zero
	t.link = trace.Link{}
	t.stats.Trailing++
	t.mu.Unlock()

	ctx := context.Background()
	t.logFn().Debug("throttle trailing fire", "throttler", t.id)

	defer func() {
		if rec := recover(); rec != nil {
			t.mu.Lock()
			t.stats.Panics++
			t.mu.Unlock()

			t.ins.panicked(ctx)
			t.logFn().Error("throttle trailing callback panicked", "throttler", t.id, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
		}
	}()

	t.invoke(ctx, edgeTrailing, arg, link)
}

// invoke runs the callback inside a span. A panic is recorded on the span
// and re-raised.
func (t *Throttler[T]) invoke(ctx context.Context, e edge, arg T, link trace.Link) {
	spanOpts := []trace.SpanStartOption{
		trace.WithAttributes(t.ins.idAttr, attrWait.String(t.wait.String())),
	}
	if link.SpanContext.IsValid() {
		spanOpts = append(spanOpts, trace.WithLinks(link))
	}

	ctx, span := t.tracer.Start(ctx, "throttle."+string(e), spanOpts...)
	defer func() {
		if rec := recover(); rec != nil {
			span.RecordError(fmt.Errorf("panic: %v", rec))
			span.SetStatus(codes.Error, fmt.Sprint(rec))
			span.End()
			panic(rec)
		}
		span.End()
	}()

	t.ins.invoked(ctx, e)
	t.fn(arg)
}
