// Package observability provides the tracing helper every C2-C10
// operation calls at its boundary, grounded on the teacher's pattern of
// pairing libCommons.NewTrackingFromContext with tracer.Start and
// HandleSpanError around each use-case method.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/lerian-kg/kgarbiter"

// StartSpan opens a span under the shared tracer. Safe to call even when
// no exporter is configured: otel's default tracer is then a no-op, so
// this never blocks or errors the caller, matching the "no internal task
// queue, all in-process computation is non-suspending" model (§5).
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}

	return ctx, span
}

// RecordError marks the span as failed and attaches err, mirroring the
// teacher's libOpenTelemetry.HandleSpanError helper.
func RecordError(span trace.Span, message string, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, message)
}
