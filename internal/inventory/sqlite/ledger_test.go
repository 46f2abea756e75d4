package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mincheol-dev/sneakershop/internal/inventory"
	invsqlite "github.com/mincheol-dev/sneakershop/internal/inventory/sqlite"
	"github.com/mincheol-dev/sneakershop/internal/storage"
	storesqlite "github.com/mincheol-dev/sneakershop/internal/storage/sqlite"
)

func newDB(t *testing.T) *storesqlite.DB {
	t.Helper()
	db, err := storesqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, db *storesqlite.DB, ledger inventory.Ledger, variant, size string, qty int) {
	t.Helper()
	err := ledger.Put(context.Background(), db.Querier(), inventory.Line{
		VariantID: variant, Size: size, Quantity: qty,
	})
	require.NoError(t, err)
}

func quantity(t *testing.T, db *storesqlite.DB, ledger inventory.Ledger, variant, size string) int {
	t.Helper()
	n, err := ledger.Get(context.Background(), db.Querier(), variant, size)
	require.NoError(t, err)
	return n
}

func TestDecrement(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()
	seed(t, db, ledger, "vA", "M", 3)

	err := db.InTx(context.Background(), func(q storage.Querier) error {
		return ledger.Decrement(context.Background(), q, []inventory.Line{
			{VariantID: "vA", Size: "M", Quantity: 2},
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, quantity(t, db, ledger, "vA", "M"))
}

func TestDecrementInsufficient(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()
	seed(t, db, ledger, "vA", "M", 1)

	err := db.InTx(context.Background(), func(q storage.Querier) error {
		return ledger.Decrement(context.Background(), q, []inventory.Line{
			{VariantID: "vA", Size: "M", Quantity: 2},
		})
	})

	var insufficient *inventory.InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "vA", insufficient.Line.VariantID)
	assert.Equal(t, 1, quantity(t, db, ledger, "vA", "M"))
}

func TestDecrementUnknownRecord(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()

	err := db.InTx(context.Background(), func(q storage.Querier) error {
		return ledger.Decrement(context.Background(), q, []inventory.Line{
			{VariantID: "missing", Size: "M", Quantity: 1},
		})
	})

	var insufficient *inventory.InsufficientError
	assert.ErrorAs(t, err, &insufficient)
}

func TestDecrementBatchRollsBackWhole(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()
	seed(t, db, ledger, "vA", "M", 5)
	seed(t, db, ledger, "vB", "L", 0)

	err := db.InTx(context.Background(), func(q storage.Querier) error {
		return ledger.Decrement(context.Background(), q, []inventory.Line{
			{VariantID: "vA", Size: "M", Quantity: 3},
			{VariantID: "vB", Size: "L", Quantity: 1},
		})
	})

	var insufficient *inventory.InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "vB", insufficient.Line.VariantID)

	// The first line's decrement must not survive the failed batch.
	assert.Equal(t, 5, quantity(t, db, ledger, "vA", "M"))
	assert.Equal(t, 0, quantity(t, db, ledger, "vB", "L"))
}

func TestRestore(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()
	seed(t, db, ledger, "vA", "M", 1)

	err := db.InTx(context.Background(), func(q storage.Querier) error {
		return ledger.Restore(context.Background(), q, []inventory.Line{
			{VariantID: "vA", Size: "M", Quantity: 2},
			{VariantID: "vGone", Size: "S", Quantity: 1},
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 3, quantity(t, db, ledger, "vA", "M"))
	// Restore recreates records that were removed in the meantime.
	assert.Equal(t, 1, quantity(t, db, ledger, "vGone", "S"))
}

func TestGetUnknown(t *testing.T) {
	db := newDB(t)
	ledger := invsqlite.NewLedger()

	_, err := ledger.Get(context.Background(), db.Querier(), "nope", "M")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

// TestConcurrentDecrementNeverOversells: N workers each demand one unit of a
// stock of S. Exactly S must win and the counter must end at zero.
func TestConcurrentDecrementNeverOversells(t *testing.T) {
	const (
		workers = 20
		stock   = 7
	)

	db := newDB(t)
	ledger := invsqlite.NewLedger()
	seed(t, db, ledger, "vA", "M", stock)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.InTx(context.Background(), func(q storage.Querier) error {
				return ledger.Decrement(context.Background(), q, []inventory.Line{
					{VariantID: "vA", Size: "M", Quantity: 1},
				})
			})

			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *inventory.InsufficientError
		require.ErrorAs(t, err, &insufficient)
		failed++
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, workers-stock, failed)
	assert.Equal(t, 0, quantity(t, db, ledger, "vA", "M"))
}
