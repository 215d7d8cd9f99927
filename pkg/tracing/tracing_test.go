package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	tracer = nil

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "noop")

	assert.Equal(t, ctx, spanCtx)
	assert.False(t, span.SpanContext().IsValid())
	assert.Equal(t, "", GetTraceID(spanCtx))
}

func TestStartSpanRecordsTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		tracer = nil
		_ = tp.Shutdown(context.Background())
	})
	SetTracer(tp.Tracer("test"))

	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()

	require.True(t, span.SpanContext().IsValid())
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	assert.Len(t, GetTraceID(ctx), 32)
}

func TestSetupDisabled(t *testing.T) {
	tracer = nil

	shutdown, err := Setup(context.Background(), "clover", "test", false, OTLPConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	// Disabled setup never installs a tracer; spans stay passthrough.
	ctx := context.Background()
	spanCtx, _ := StartSpan(ctx, "op")
	assert.Equal(t, ctx, spanCtx)
}

func TestSetupRejectsUnknownProtocol(t *testing.T) {
	tracer = nil
	t.Cleanup(func() { tracer = nil })

	_, err := Setup(context.Background(), "clover", "test", true, OTLPConfig{
		Endpoint: "localhost:4317",
		Protocol: "carrier-pigeon",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported OTLP protocol")
}
