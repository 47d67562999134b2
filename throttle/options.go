package throttle

import (
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const defaultDropLogInterval = time.Second

// Option is a functional option for configuring a [Throttler] via [New].
type Option func(*options) error
type options struct {
	leading         bool
	latestArgs      bool
	clock           Clock
	logger          *slog.Logger
	tracer          trace.Tracer
	meter           metric.Meter
	dropLogInterval time.Duration
}

func defaultOptions() options {
	return options{
		leading:         true,
		clock:           realClock{},
		dropLogInterval: defaultDropLogInterval,
	}
}

// WithLeading controls whether the first call in a quiet period fires
// immediately (true, the default) or is deferred until wait elapses.
func WithLeading(leading bool) Option {
	return func(o *options) error {
		o.leading = leading
		return nil
	}
}

// WithLatestArgs makes each suppressed call replace the argument held by
// the pending trailing fire, so the trailing fire receives the last call
// of the burst instead of the call that scheduled it.
func WithLatestArgs() Option {
	return func(o *options) error {
		o.latestArgs = true
		return nil
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(o *options) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}
		o.clock = clock
		return nil
	}
}

// WithLogger injects a custom [slog.Logger]. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer records a span for every fire.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithMeter records call and fire counters on the given meter.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) error {
		if meter == nil {
			return errors.New("meter must not be nil")
		}
		o.meter = meter
		return nil
	}
}

// WithDropLogInterval sets how often suppressed calls are logged at
// debug level. The first suppressed call is always logged; zero logs
// only that one.
func WithDropLogInterval(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("drop log interval must not be negative")
		}
		o.dropLogInterval = d
		return nil
	}
}
