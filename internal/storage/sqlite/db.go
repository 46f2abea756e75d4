// Package sqlite owns the SQLite database handle and the transactional
// unit-of-work used by the order and inventory repositories.
//
// WAL mode is enabled so readers never block the writer. Transactions are
// opened with txlock=immediate: the write lock is taken up front, which
// serializes concurrent order operations instead of failing them halfway
// through. busy_timeout bounds how long a competing transaction waits before
// it is surfaced as a retryable conflict.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mincheol-dev/sneakershop/internal/storage"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// keeping cross-compilation and Alpine images simple.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               TEXT PRIMARY KEY,
    user_id          TEXT    NOT NULL,
    lines            TEXT    NOT NULL,
    total_price      INTEGER NOT NULL,
    shipping_fee     INTEGER NOT NULL DEFAULT 0,
    shipping_address TEXT    NOT NULL DEFAULT '{}',
    status           TEXT    NOT NULL,
    payment_ref      TEXT    NOT NULL UNIQUE,
    created_at       TEXT    NOT NULL,
    updated_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS inventory (
    variant_id TEXT    NOT NULL,
    size       TEXT    NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    updated_at TEXT    NOT NULL,
    PRIMARY KEY (variant_id, size)
);

CREATE TABLE IF NOT EXISTS order_events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   TEXT NOT NULL,
    kind       TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    trace_id   TEXT NOT NULL DEFAULT '',
    span_id    TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, id);
`

// DB wraps the sql handle and implements storage.TxRunner.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite allows one writer at a time; a single connection keeps the
	// pool from queueing on the file lock instead of busy_timeout.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

// Querier returns the non-transactional handle for plain reads.
func (d *DB) Querier() storage.Querier {
	return d.sql
}

// InTx runs fn inside one transaction. Rollback on any error; busy/locked
// failures are mapped to storage.ErrTxConflict so callers can retry.
func (d *DB) InTx(ctx context.Context, fn func(q storage.Querier) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(fmt.Errorf("sqlite: begin: %w", err))
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapBusy(err)
	}

	if err := tx.Commit(); err != nil {
		return mapBusy(fmt.Errorf("sqlite: commit: %w", err))
	}
	return nil
}

func mapBusy(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", storage.ErrTxConflict, err)
		}
	}
	return err
}
