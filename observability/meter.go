package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/seqkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// InitMeter starts a meter provider exporting over OTLP/HTTP and installs it
// globally. The caller shuts it down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the seqkit meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Metric instrument names.
const (
	MetricTraversals = "seqkit.traversals"
	MetricElements   = "seqkit.elements"
	MetricFaults     = "seqkit.faults"
	MetricDuration   = "seqkit.traversal.duration"
)

// Outcomes recorded for a finished traversal.
const (
	OutcomeExhausted = "exhausted"
	OutcomeFault     = "fault"
	OutcomeClosed    = "closed"
)

// Metrics holds the instruments recorded per traversal.
type Metrics struct {
	traversals metric.Int64Counter
	elements   metric.Int64Counter
	faults     metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics creates the traversal instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	traversals, err := meter.Int64Counter(MetricTraversals,
		metric.WithDescription("Finished traversals by stage and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricTraversals, err)
	}

	elements, err := meter.Int64Counter(MetricElements,
		metric.WithDescription("Elements yielded to consumers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricElements, err)
	}

	faults, err := meter.Int64Counter(MetricFaults,
		metric.WithDescription("Evaluation faults by stage and error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricFaults, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Traversal wall time from cursor creation to end"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	return &Metrics{
		traversals: traversals,
		elements:   elements,
		faults:     faults,
		duration:   duration,
	}, nil
}

// RecordTraversal records one finished traversal of stage.
func (m *Metrics) RecordTraversal(ctx context.Context, stage, outcome string, elements int, d time.Duration) {
	stageAttr := attribute.String("stage", stage)
	m.traversals.Add(ctx, 1, metric.WithAttributes(stageAttr, attribute.String("outcome", outcome)))
	m.elements.Add(ctx, int64(elements), metric.WithAttributes(stageAttr))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(stageAttr))
}

// RecordFault records an evaluation fault raised below stage.
func (m *Metrics) RecordFault(ctx context.Context, stage, code string) {
	m.faults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("code", code),
	))
}
