package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/pipeline"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, trace.Tracer) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp.Tracer("test")
}

func newManualMetrics(t *testing.T) (*sdkmetric.ManualReader, *Metrics) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return reader, m
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Tracing.Endpoint != "localhost:4318" || *cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("unexpected tracing defaults %+v", cfg.Tracing)
	}
	if cfg.Metrics.Interval != 15*time.Second {
		t.Errorf("unexpected metrics interval %v", cfg.Metrics.Interval)
	}
	if cfg.Tracing.Enabled || cfg.Metrics.Enabled {
		t.Error("providers must stay disabled by default")
	}
}

func ratePtr(v float64) *float64 { return &v }

func TestConfigApplyDefaults_KeepsZeroSampleRate(t *testing.T) {
	cfg := Config{Tracing: TracingConfig{SampleRate: ratePtr(0)}}
	cfg.ApplyDefaults()
	if *cfg.Tracing.SampleRate != 0 {
		t.Fatalf("sample_rate 0 rewritten to %v", *cfg.Tracing.SampleRate)
	}
	tc := cfg.Tracer("seqdemo", "1.0.0", "test")
	if tc.SampleRate != 0 {
		t.Errorf("tracer sample rate = %v, want 0", tc.SampleRate)
	}
	if got := sampler(tc.SampleRate).Description(); !strings.HasPrefix(got, "AlwaysOffSampler") {
		t.Errorf("sampler = %q, want AlwaysOffSampler", got)
	}
}

func TestConfigTracer_NilSampleRate(t *testing.T) {
	var cfg Config
	if tc := cfg.Tracer("seqdemo", "1.0.0", "test"); tc.SampleRate != 1.0 {
		t.Errorf("nil sample rate = %v, want 1", tc.SampleRate)
	}
}

func TestConfigProviderSettings(t *testing.T) {
	cfg := Config{
		Tracing: TracingConfig{Endpoint: "collector:4318", Insecure: true, SampleRate: ratePtr(0.25)},
		Metrics: MetricsConfig{Endpoint: "collector:4318", Interval: time.Second},
	}
	tc := cfg.Tracer("seqdemo", "1.0.0", "staging")
	if tc.ServiceName != "seqdemo" || tc.Endpoint != "collector:4318" || tc.SampleRate != 0.25 || !tc.Insecure {
		t.Errorf("unexpected tracer config %+v", tc)
	}
	mc := cfg.Meter("seqdemo", "1.0.0", "staging")
	if mc.Environment != "staging" || mc.Interval != time.Second {
		t.Errorf("unexpected meter config %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); !strings.HasPrefix(got, tc.want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", tc.rate, got, tc.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("seqdemo", "1.0.0", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == "seqdemo" {
			found = true
		}
	}
	if !found {
		t.Errorf("service.name missing from %v", res.Attributes())
	}
}

func TestInitProviders(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	ctx := context.Background()
	cfg := Config{}
	cfg.ApplyDefaults()

	tp, err := InitTracer(ctx, cfg.Tracer("seqdemo", "test", "development"))
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	mp, err := InitMeter(ctx, cfg.Meter("seqdemo", "test", "development"))
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
	_ = mp.Shutdown(shutdownCtx)
}

func TestInstrument_OneSpanPerTraversal(t *testing.T) {
	rec, tracer := newRecorder(t)
	q := Instrument(pipeline.Filter(pipeline.Of(1, 2, 3, 4), func(n int) bool { return n%2 == 0 }), "evens", tracer, nil)

	if len(rec.Started()) != 0 {
		t.Fatal("composition must not start a span")
	}
	for i := 0; i < 2; i++ {
		got, err := pipeline.Collect(context.Background(), q)
		if err != nil || len(got) != 2 {
			t.Fatalf("got %v, %v", got, err)
		}
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	ids := map[string]bool{}
	for _, s := range spans {
		if s.Name() != SpanTraversal {
			t.Errorf("unexpected span name %q", s.Name())
		}
		if v, _ := attr(s, AttrElements); v.AsInt64() != 2 {
			t.Errorf("expected 2 elements, got %v", v.AsInt64())
		}
		if v, _ := attr(s, AttrOutcome); v.AsString() != OutcomeExhausted {
			t.Errorf("expected exhausted outcome, got %q", v.AsString())
		}
		if v, _ := attr(s, AttrPlan); v.AsString() != "slice(len=4) -> filter" {
			t.Errorf("unexpected plan %q", v.AsString())
		}
		id, _ := attr(s, AttrTraversalID)
		ids[id.AsString()] = true
	}
	if len(ids) != 2 {
		t.Error("each traversal needs its own id")
	}
}

func TestInstrument_Fault(t *testing.T) {
	rec, tracer := newRecorder(t)
	reader, metrics := newManualMetrics(t)
	boom := errors.New("boom")
	q := Instrument(pipeline.Map(pipeline.Of(1, 2), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}), "failing", tracer, metrics)

	_, err := pipeline.Collect(context.Background(), q)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status())
	}
	if v, _ := attr(spans[0], AttrErrorCode); v.AsString() != string(apperrors.ErrCodeEvaluationFailed) {
		t.Errorf("unexpected error code %q", v.AsString())
	}

	data := collectMetrics(t, reader)
	if got := sumInt(t, data[MetricFaults]); got != 1 {
		t.Errorf("expected 1 fault, got %d", got)
	}
	if got := sumInt(t, data[MetricElements]); got != 1 {
		t.Errorf("expected 1 element, got %d", got)
	}
}

func TestInstrument_ClosedEarly(t *testing.T) {
	rec, tracer := newRecorder(t)
	reader, metrics := newManualMetrics(t)
	naturals := pipeline.Iterate(1, func(n int) int { return n + 1 })

	v, err := pipeline.First(context.Background(), Instrument(naturals, "naturals", tracer, metrics))
	if err != nil || v != 1 {
		t.Fatalf("got %v, %v", v, err)
	}
	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected span ended on Close, got %d", len(spans))
	}
	if out, _ := attr(spans[0], AttrOutcome); out.AsString() != OutcomeClosed {
		t.Errorf("expected closed outcome, got %q", out.AsString())
	}

	data := collectMetrics(t, reader)
	if got := sumInt(t, data[MetricTraversals]); got != 1 {
		t.Errorf("expected 1 traversal, got %d", got)
	}
	if _, ok := data[MetricDuration].(metricdata.Histogram[float64]); !ok {
		t.Errorf("expected duration histogram, got %T", data[MetricDuration])
	}
}

func TestInstrument_PropagatesSpanUpstream(t *testing.T) {
	_, tracer := newRecorder(t)
	var sawSpan, sawID bool
	src := pipeline.Tap(pipeline.Of("a"), func(ctx context.Context, _ string) error {
		sawSpan = trace.SpanContextFromContext(ctx).IsValid()
		_, sawID = TraversalID(ctx)
		return nil
	})
	if _, err := pipeline.Collect(context.Background(), Instrument(src, "tap", tracer, nil)); err != nil {
		t.Fatal(err)
	}
	if !sawSpan || !sawID {
		t.Errorf("upstream context missing span=%v id=%v", sawSpan, sawID)
	}
}

func TestInstrument_Stage(t *testing.T) {
	q := Instrument(pipeline.Of(1), "ones", NoopTracer(), nil)
	if q.Stage().String() != "instrument(ones)" || q.Stage().Kind != pipeline.KindDecorator {
		t.Errorf("unexpected stage %+v", q.Stage())
	}
	if got, _ := pipeline.Collect(context.Background(), q); len(got) != 1 {
		t.Errorf("noop tracer must not change values, got %v", got)
	}
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: logger.FormatJSON, Writer: &buf}, "test")
	q := Logged(pipeline.Take(pipeline.Of(5, 3, 9), 2), "top", log)
	if buf.Len() != 0 {
		t.Fatal("composition must not log")
	}

	if _, err := pipeline.Collect(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	lines := logLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["message"] != "traversal started" || lines[1]["message"] != "traversal finished" {
		t.Errorf("unexpected messages %v / %v", lines[0]["message"], lines[1]["message"])
	}
	if lines[1][logger.FieldElements] != float64(2) || lines[1][logger.FieldStage] != "top" {
		t.Errorf("unexpected summary %v", lines[1])
	}
	if lines[1][logger.FieldPlan] != "slice(len=3) -> take(n=2)" {
		t.Errorf("unexpected plan %v", lines[1][logger.FieldPlan])
	}
	if lines[0][logger.FieldTraversal] == "" || lines[0][logger.FieldTraversal] != lines[1][logger.FieldTraversal] {
		t.Error("traversal id must be stable within a traversal")
	}
}

func TestLogged_Fault(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: logger.FormatJSON, Writer: &buf}, "test")
	q := Logged(pipeline.TryFilter(pipeline.Of(1), func(context.Context, int) (bool, error) {
		return false, errors.New("undecidable")
	}), "bad", log)

	_, _ = pipeline.Collect(context.Background(), q)
	lines := logLines(t, &buf)
	if len(lines) != 1 || lines[0]["level"] != "error" {
		t.Fatalf("expected one error line, got %s", buf.String())
	}
	if lines[0]["code"] != string(apperrors.ErrCodeEvaluationFailed) {
		t.Errorf("unexpected code %v", lines[0]["code"])
	}
}

func TestErrorCode(t *testing.T) {
	if got := errorCode(apperrors.EmptySequence("First")); got != string(apperrors.ErrCodeEmptySequence) {
		t.Errorf("expected EMPTY_SEQUENCE, got %q", got)
	}
	wrapped := fmt.Errorf("stage: %w", apperrors.IndexOutOfRange(3, 2))
	if got := errorCode(wrapped); got != string(apperrors.ErrCodeIndexOutOfRange) {
		t.Errorf("expected INDEX_OUT_OF_RANGE, got %q", got)
	}
	if got := errorCode(errors.New("socket closed")); got != string(apperrors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR for a plain error, got %q", got)
	}
}

func TestLogged_UnderInstrumentSharesIDs(t *testing.T) {
	rec, tracer := newRecorder(t)
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: logger.FormatJSON, Writer: &buf}, "test")
	q := Instrument(Logged(pipeline.Of(1, 2), "pair", log), "pair", tracer, nil)

	if _, err := pipeline.Collect(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	span := rec.Ended()[0]
	id, _ := attr(span, AttrTraversalID)
	lines := logLines(t, &buf)
	if lines[0][logger.FieldTraversal] != id.AsString() {
		t.Errorf("log id %v, span id %v", lines[0][logger.FieldTraversal], id.AsString())
	}
	if lines[0][logger.FieldTraceID] != span.SpanContext().TraceID().String() {
		t.Errorf("expected trace id on log line, got %v", lines[0][logger.FieldTraceID])
	}
}

func TestTraversalIDContext(t *testing.T) {
	if _, ok := TraversalID(context.Background()); ok {
		t.Error("expected no id")
	}
	ctx := WithTraversalID(context.Background(), "abc")
	if id, ok := TraversalID(ctx); !ok || id != "abc" {
		t.Errorf("got %q %v", id, ok)
	}
}
