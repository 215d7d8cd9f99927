// Package tracing owns the process tracer: Setup wires the provider and OTLP
// export, handlers open spans through StartSpan, and the error handler stamps
// responses with GetTraceID.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer installs the tracer StartSpan uses. Setup calls this; tests may
// call it directly.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan opens a span under the installed tracer. Before Setup runs it is
// a passthrough: the caller's context and its current span come back
// unchanged, so handlers never branch on whether tracing is enabled.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name)
}

// GetTraceID returns the hex trace id of the span recorded on the context,
// or "" when there is none. Error responses carry it so a client report can
// be matched to its trace.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
