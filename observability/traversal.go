package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/pipeline"
)

type traversalIDKey struct{}

// WithTraversalID stores a traversal id in ctx.
func WithTraversalID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traversalIDKey{}, id)
}

// TraversalID returns the traversal id stored in ctx, if any.
func TraversalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traversalIDKey{}).(string)
	return id, ok && id != ""
}

// Instrument returns s with a stage that opens one span per traversal. The
// span carries a fresh traversal id, the stage plan and the number of
// elements yielded, and ends on exhaustion, fault or Close, whichever comes
// first. Upstream stages receive a context holding the span and the id.
// A nil tracer uses the global provider; nil metrics records no metrics.
func Instrument[T any](s *pipeline.Sequence[T], name string, tracer trace.Tracer, metrics *Metrics) *pipeline.Sequence[T] {
	if tracer == nil {
		tracer = Tracer()
	}
	plan := s.Stage().Chain()
	out := pipeline.Decorate(s, "instrument", func(ctx context.Context, src pipeline.Cursor[T]) pipeline.Cursor[T] {
		id := uuid.NewString()
		_, span := tracer.Start(ctx, SpanTraversal, trace.WithAttributes(
			attribute.String(AttrStage, name),
			attribute.String(AttrPlan, plan),
			attribute.String(AttrTraversalID, id),
		))
		return &instrumentedCursor[T]{
			source:  src,
			name:    name,
			id:      id,
			span:    span,
			metrics: metrics,
			start:   time.Now(),
		}
	})
	out.Stage().Label = name
	return out
}

type instrumentedCursor[T any] struct {
	source   pipeline.Cursor[T]
	name     string
	id       string
	span     trace.Span
	metrics  *Metrics
	start    time.Time
	elements int
	ended    bool
}

func (c *instrumentedCursor[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := c.source.Next(trace.ContextWithSpan(WithTraversalID(ctx, c.id), c.span))
	if c.ended {
		return val, ok, err
	}
	switch {
	case err != nil:
		c.finish(ctx, OutcomeFault, err)
	case !ok:
		c.finish(ctx, OutcomeExhausted, nil)
	default:
		c.elements++
	}
	return val, ok, err
}

func (c *instrumentedCursor[T]) Close() error {
	if !c.ended {
		c.finish(context.Background(), OutcomeClosed, nil)
	}
	return c.source.Close()
}

func (c *instrumentedCursor[T]) finish(ctx context.Context, outcome string, err error) {
	c.ended = true
	c.span.SetAttributes(
		attribute.Int(AttrElements, c.elements),
		attribute.String(AttrOutcome, outcome),
	)
	if err != nil {
		code := errorCode(err)
		c.span.RecordError(err)
		c.span.SetAttributes(attribute.String(AttrErrorCode, code))
		c.span.SetStatus(codes.Error, err.Error())
		if c.metrics != nil {
			c.metrics.RecordFault(ctx, c.name, code)
		}
	}
	c.span.End()
	if c.metrics != nil {
		c.metrics.RecordTraversal(ctx, c.name, outcome, c.elements, time.Since(c.start))
	}
}

// Logged returns s with a stage that logs each traversal through log: a
// debug line on the first pull and one line when the traversal ends. Placed
// under Instrument, the lines carry the span's trace id and the same
// traversal id; otherwise a fresh id is generated.
func Logged[T any](s *pipeline.Sequence[T], name string, log *logger.Logger) *pipeline.Sequence[T] {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	plan := s.Stage().Chain()
	out := pipeline.Decorate(s, "log", func(_ context.Context, src pipeline.Cursor[T]) pipeline.Cursor[T] {
		return &loggedCursor[T]{
			source: src,
			base:   log.WithStage(name, plan),
			start:  time.Now(),
		}
	})
	out.Stage().Label = name
	return out
}

type loggedCursor[T any] struct {
	source   pipeline.Cursor[T]
	base     *logger.Logger
	log      *logger.Logger
	start    time.Time
	elements int
	ended    bool
}

func (c *loggedCursor[T]) Next(ctx context.Context) (T, bool, error) {
	if c.log == nil {
		c.bind(ctx)
		c.log.Debug("traversal started")
	}
	val, ok, err := c.source.Next(ctx)
	if c.ended {
		return val, ok, err
	}
	switch {
	case err != nil:
		c.ended = true
		c.log.WithError(err).Error("traversal failed", c.summary(OutcomeFault), logger.Fields("code", errorCode(err)))
	case !ok:
		c.ended = true
		c.log.Info("traversal finished", c.summary(OutcomeExhausted))
	default:
		c.elements++
	}
	return val, ok, err
}

func (c *loggedCursor[T]) Close() error {
	if !c.ended {
		c.ended = true
		if c.log == nil {
			c.bind(context.Background())
		}
		c.log.Debug("traversal closed early", c.summary(OutcomeClosed))
	}
	return c.source.Close()
}

func (c *loggedCursor[T]) bind(ctx context.Context) {
	id, ok := TraversalID(ctx)
	if !ok {
		id = uuid.NewString()
	}
	c.log = c.base.WithContext(ctx).WithFields(logger.Fields(logger.FieldTraversal, id))
}

func (c *loggedCursor[T]) summary(outcome string) map[string]interface{} {
	f := logger.DurationFields(outcome, time.Since(c.start))
	f[logger.FieldElements] = c.elements
	return f
}

func errorCode(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.Internal(err).Code)
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(InstrumentationName)
}
