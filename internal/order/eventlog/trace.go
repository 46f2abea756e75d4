package eventlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds an Entry with trace identifiers taken from the active
// OpenTelemetry span in ctx, if any.
func NewEntry(ctx context.Context, orderID string, kind Kind, detail string) *Entry {
	e := &Entry{
		OrderID:   orderID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
