// Package sqlite implements eventlog.Repository on the shared SQLite schema.
// The table is append-only: entries are never updated or deleted.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mincheol-dev/sneakershop/internal/order/eventlog"
	"github.com/mincheol-dev/sneakershop/internal/storage"
)

type Repository struct{}

var _ eventlog.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Append(ctx context.Context, q storage.Querier, e *eventlog.Entry) error {
	const stmt = `
		INSERT INTO order_events (order_id, kind, detail, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, stmt,
		e.OrderID,
		string(e.Kind),
		e.Detail,
		e.TraceID,
		e.SpanID,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("eventlog: append %s for order %s: %w", e.Kind, e.OrderID, err)
	}
	return nil
}

func (r *Repository) ListByOrder(ctx context.Context, q storage.Querier, orderID string) ([]*eventlog.Entry, error) {
	const stmt = `
		SELECT order_id, kind, detail, trace_id, span_id, created_at
		FROM   order_events
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := q.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("eventlog: list for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []*eventlog.Entry
	for rows.Next() {
		var (
			e       eventlog.Entry
			kind    string
			created string
		)
		if err := rows.Scan(&e.OrderID, &kind, &e.Detail, &e.TraceID, &e.SpanID, &created); err != nil {
			return nil, fmt.Errorf("eventlog: scan: %w", err)
		}
		e.Kind = eventlog.Kind(kind)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("eventlog: parse time %q: %w", created, err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: iterate: %w", err)
	}
	return out, nil
}
