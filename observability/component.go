package observability

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/seqkit/component"
)

// TracingComponent owns the tracer provider between Start and Stop.
type TracingComponent struct {
	cfg TracerConfig
	tp  *sdktrace.TracerProvider
}

var (
	_ component.Component   = (*TracingComponent)(nil)
	_ component.Describable = (*TracingComponent)(nil)
	_ component.Component   = (*MetricsComponent)(nil)
	_ component.Describable = (*MetricsComponent)(nil)
)

// NewTracingComponent returns a component that starts span export with cfg.
func NewTracingComponent(cfg TracerConfig) *TracingComponent {
	return &TracingComponent{cfg: cfg}
}

func (c *TracingComponent) Name() string { return "tracing" }

func (c *TracingComponent) Start(ctx context.Context) error {
	tp, err := InitTracer(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.tp = tp
	return nil
}

// Stop flushes pending spans and shuts the provider down.
func (c *TracingComponent) Stop(ctx context.Context) error {
	if c.tp == nil {
		return nil
	}
	err := c.tp.Shutdown(ctx)
	c.tp = nil
	return err
}

func (c *TracingComponent) Describe() component.Description {
	return component.Description{
		Name:    "Tracing",
		Details: fmt.Sprintf("otlp %s rate=%g", c.cfg.Endpoint, c.cfg.SampleRate),
	}
}

// MetricsComponent owns the meter provider between Start and Stop and
// exposes the traversal instruments once started.
type MetricsComponent struct {
	cfg     MeterConfig
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

// NewMetricsComponent returns a component that starts metric export with cfg.
func NewMetricsComponent(cfg MeterConfig) *MetricsComponent {
	return &MetricsComponent{cfg: cfg}
}

func (c *MetricsComponent) Name() string { return "metrics" }

func (c *MetricsComponent) Start(ctx context.Context) error {
	mp, err := InitMeter(ctx, c.cfg)
	if err != nil {
		return err
	}
	m, err := NewMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		_ = mp.Shutdown(ctx)
		return err
	}
	c.mp, c.metrics = mp, m
	return nil
}

// Stop flushes pending measurements and shuts the provider down.
func (c *MetricsComponent) Stop(ctx context.Context) error {
	if c.mp == nil {
		return nil
	}
	err := c.mp.Shutdown(ctx)
	c.mp, c.metrics = nil, nil
	return err
}

// Metrics returns the traversal instruments, or nil before Start.
func (c *MetricsComponent) Metrics() *Metrics { return c.metrics }

func (c *MetricsComponent) Describe() component.Description {
	return component.Description{
		Name:    "Metrics",
		Details: fmt.Sprintf("otlp %s every %s", c.cfg.Endpoint, c.cfg.Interval),
	}
}
