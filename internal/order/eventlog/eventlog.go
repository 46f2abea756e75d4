// Package eventlog defines the durable order event log.
//
// Every lifecycle transition appends one row in the same transaction as the
// state change it records, so the log is an exact audit trail of committed
// operations: you can query where an order has been and correlate each step
// with a distributed trace via the trace_id field.
package eventlog

import (
	"context"
	"time"

	"github.com/mincheol-dev/sneakershop/internal/storage"
)

type Kind string

const (
	KindCreated       Kind = "order.created"
	KindStatusChanged Kind = "order.status_changed"
	KindCancelled     Kind = "order.cancelled"
	KindDeleted       Kind = "order.deleted"
)

// Entry is a single row in the order_events table.
type Entry struct {
	// OrderID joins the event with business data.
	OrderID string

	Kind Kind

	// Detail is a short human-readable note, e.g. "paid -> shipping".
	Detail string

	// TraceID is the W3C trace ID of the OpenTelemetry span active when the
	// entry was written; it links the row to the full trace. Empty when no
	// span is active (e.g. in tests).
	TraceID string

	// SpanID pinpoints the exact operation within the trace.
	SpanID string

	CreatedAt time.Time
}

// Repository is the port for persisting event entries. Append takes the
// caller's Querier so the entry commits atomically with the state change.
type Repository interface {
	Append(ctx context.Context, q storage.Querier, e *Entry) error
	ListByOrder(ctx context.Context, q storage.Querier, orderID string) ([]*Entry, error)
}
