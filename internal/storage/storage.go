// Package storage defines the ports every persistence-backed component shares:
// a Querier that both *sql.DB and *sql.Tx satisfy, and a TxRunner that scopes
// a function to one atomic transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
)

// ErrTxConflict is returned when a transaction could not be acquired within
// the bounded wait. No partial state survives, so callers may safely retry.
var ErrTxConflict = errors.New("storage: transaction conflict, retry")

// Querier is the subset of database/sql used by repositories. Passing it
// explicitly per call (instead of a shared handle baked into the repository)
// lets the same repository code run inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner executes fn inside a single transaction. If fn returns an error
// the transaction is rolled back and the error is returned unchanged, except
// that lock-acquisition timeouts surface as ErrTxConflict.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q Querier) error) error
}
