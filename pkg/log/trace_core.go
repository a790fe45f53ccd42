package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// traceFields extracts trace_id and span_id from the span in ctx as
// key/value pairs for a SugaredLogger.
func traceFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	fields := []any{
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	}
	if spanCtx.TraceFlags() != 0 {
		fields = append(fields, "trace_flags", uint8(spanCtx.TraceFlags()))
	}
	return fields
}
