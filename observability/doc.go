// Package observability instruments sequence traversals with OpenTelemetry
// tracing and metrics and with structured logs.
//
// Providers are opt-in and export over OTLP/HTTP:
//
//	tp, err := observability.InitTracer(ctx, cfg.Tracer("seqdemo", version, env))
//	defer tp.Shutdown(ctx)
//
// Stages are attached like any other operator and stay lazy:
//
//	q := observability.Logged(query, "top-scores", logger.Get("demo"))
//	q = observability.Instrument(q, "top-scores", tracer, metrics)
//
// Each traversal of an instrumented sequence gets its own span and a
// traversal id that a Logged stage underneath it reuses.
package observability
