package tracing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"pagekit/internal/observability/tracing"
)

func TestStartQuerySpanAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())

	ctx, span := tracing.StartQuerySpan(context.Background(), "articles", 3, 50)
	tracing.AnnotateStrategy(span, "cursor_seek")
	tracing.AnnotateCacheHit(span)
	span.End()
	_ = ctx

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "pagekit.query", spans[0].Name)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "articles", attrs["db.table"].AsString())
	assert.Equal(t, int64(3), attrs["query.page"].AsInt64())
	assert.Equal(t, int64(50), attrs["query.page_size"].AsInt64())
	assert.Equal(t, "cursor_seek", attrs["query.strategy"].AsString())
	assert.True(t, attrs["query.cache_hit"].AsBool())
}
