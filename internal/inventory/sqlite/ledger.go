// Package sqlite implements inventory.Ledger on the shared SQLite schema.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mincheol-dev/sneakershop/internal/inventory"
	"github.com/mincheol-dev/sneakershop/internal/storage"
)

// Ledger is stateless; all state lives in the inventory table.
type Ledger struct{}

var _ inventory.Ledger = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{}
}

// Decrement subtracts each line's quantity with a guarded update: the row is
// only touched while quantity >= requested. Zero rows affected means the
// check failed, and the enclosing transaction's rollback discards any lines
// already decremented in this call.
func (l *Ledger) Decrement(ctx context.Context, q storage.Querier, lines []inventory.Line) error {
	const stmt = `
		UPDATE inventory
		SET    quantity = quantity - ?, updated_at = ?
		WHERE  variant_id = ? AND size = ? AND quantity >= ?`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, line := range lines {
		res, err := q.ExecContext(ctx, stmt, line.Quantity, now, line.VariantID, line.Size, line.Quantity)
		if err != nil {
			return fmt.Errorf("inventory: decrement %s/%s: %w", line.VariantID, line.Size, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("inventory: decrement %s/%s: %w", line.VariantID, line.Size, err)
		}
		if n == 0 {
			return &inventory.InsufficientError{Line: line}
		}
	}
	return nil
}

// Restore adds quantities back unconditionally, creating the record if it
// no longer exists. At-most-once semantics per order are the caller's
// responsibility via the status state machine.
func (l *Ledger) Restore(ctx context.Context, q storage.Querier, lines []inventory.Line) error {
	const stmt = `
		INSERT INTO inventory (variant_id, size, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (variant_id, size)
		DO UPDATE SET quantity = quantity + excluded.quantity, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, line := range lines {
		if _, err := q.ExecContext(ctx, stmt, line.VariantID, line.Size, line.Quantity, now); err != nil {
			return fmt.Errorf("inventory: restore %s/%s: %w", line.VariantID, line.Size, err)
		}
	}
	return nil
}

// Put sets a counter to an absolute quantity (seeding and admin restock).
func (l *Ledger) Put(ctx context.Context, q storage.Querier, line inventory.Line) error {
	const stmt = `
		INSERT INTO inventory (variant_id, size, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (variant_id, size)
		DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := q.ExecContext(ctx, stmt, line.VariantID, line.Size, line.Quantity, now); err != nil {
		return fmt.Errorf("inventory: put %s/%s: %w", line.VariantID, line.Size, err)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, q storage.Querier, variantID, size string) (int, error) {
	const stmt = `SELECT quantity FROM inventory WHERE variant_id = ? AND size = ?`

	var quantity int
	err := q.QueryRowContext(ctx, stmt, variantID, size).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, inventory.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("inventory: get %s/%s: %w", variantID, size, err)
	}
	return quantity, nil
}
