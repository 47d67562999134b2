package throttle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/adamwoolhether/throttler/throttle"

const (
	attrID      = attribute.Key("throttler.id")
	attrEdge    = attribute.Key("throttler.edge")
	attrOutcome = attribute.Key("throttler.outcome")
	attrWait    = attribute.Key("throttler.wait")
)

// instruments bundles the otel counters of one throttler.
type instruments struct {
	calls       metric.Int64Counter
	invocations metric.Int64Counter
	suppressed  metric.Int64Counter
	panics      metric.Int64Counter
	idAttr      attribute.KeyValue
}

func newInstruments(meter metric.Meter, id string) (*instruments, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}

	var err error
	ins := instruments{idAttr: attrID.String(id)}

	ins.calls, err = meter.Int64Counter("throttler.calls",
		metric.WithDescription("Calls made to the throttled function."),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("calls counter: %w", err)
	}

	ins.invocations, err = meter.Int64Counter("throttler.invocations",
		metric.WithDescription("Times the wrapped callback ran, by edge."),
		metric.WithUnit("{invocation}"))
	if err != nil {
		return nil, fmt.Errorf("invocations counter: %w", err)
	}

	ins.suppressed, err = meter.Int64Counter("throttler.suppressed",
		metric.WithDescription("Calls absorbed by an already pending trailing fire."),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("suppressed counter: %w", err)
	}

	ins.panics, err = meter.Int64Counter("throttler.panics",
		metric.WithDescription("Recovered panics from trailing fires."),
		metric.WithUnit("{panic}"))
	if err != nil {
		return nil, fmt.Errorf("panics counter: %w", err)
	}

	return &ins, nil
}

func (ins *instruments) call(ctx context.Context, outcome string) {
	ins.calls.Add(ctx, 1, metric.WithAttributes(ins.idAttr, attrOutcome.String(outcome)))
}

func (ins *instruments) invoked(ctx context.Context, e edge) {
	ins.invocations.Add(ctx, 1, metric.WithAttributes(ins.idAttr, attrEdge.String(string(e))))
}

func (ins *instruments) suppress(ctx context.Context) {
	ins.suppressed.Add(ctx, 1, metric.WithAttributes(ins.idAttr))
}

func (ins *instruments) panicked(ctx context.Context) {
	ins.panics.Add(ctx, 1, metric.WithAttributes(ins.idAttr))
}

func defaultTracer() trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer(instrumentationName)
}
