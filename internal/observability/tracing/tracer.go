// Package tracing integrates OpenTelemetry tracing with the query engine.
// Spans cover the orchestration path: cache lookup, count resolution, and
// the main data fetch.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the engine.
var tracer = otel.Tracer("pagekit")

// GetTracer returns the global tracer for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}

// StartQuerySpan starts a span for one paginated query.
//
//	ctx, span := tracing.StartQuerySpan(ctx, "articles", 3, 50)
//	defer span.End()
func StartQuerySpan(ctx context.Context, table string, page, pageSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pagekit.query",
		trace.WithAttributes(
			attribute.String("db.table", table),
			attribute.Int("query.page", page),
			attribute.Int("query.page_size", pageSize),
		))
}

// AnnotateStrategy records the chosen pagination strategy on the span.
func AnnotateStrategy(span trace.Span, strategy string) {
	span.SetAttributes(attribute.String("query.strategy", strategy))
}

// AnnotateCacheHit marks the span as served from cache.
func AnnotateCacheHit(span trace.Span) {
	span.SetAttributes(attribute.Bool("query.cache_hit", true))
}
