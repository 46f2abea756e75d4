// Package inventory owns the per-(variant, size) stock counters. Every
// mutation is a bounded compare-and-update so that quantities never go
// negative, no matter how creation requests interleave.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/mincheol-dev/sneakershop/internal/storage"
)

var ErrNotFound = errors.New("inventory: record not found")

// Line is one order's demand against a single stock counter.
type Line struct {
	VariantID string
	Size      string
	Quantity  int
}

// InsufficientError names the first line in a batch that could not be
// satisfied. The whole batch's effect is discarded by the enclosing
// transaction.
type InsufficientError struct {
	Line Line
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for variant %s size %s (requested %d)",
		e.Line.VariantID, e.Line.Size, e.Line.Quantity)
}

// Ledger is the port for stock accounting. Decrement and Restore take a
// storage.Querier so the caller decides the transaction boundary: the
// lifecycle manager runs them in the same transaction as the order write.
//
// Restore must never be invoked twice for the same order's effect; that
// guarantee comes from the order status state machine, not from the ledger.
type Ledger interface {
	Decrement(ctx context.Context, q storage.Querier, lines []Line) error
	Restore(ctx context.Context, q storage.Querier, lines []Line) error
	Put(ctx context.Context, q storage.Querier, line Line) error
	Get(ctx context.Context, q storage.Querier, variantID, size string) (int, error)
}
