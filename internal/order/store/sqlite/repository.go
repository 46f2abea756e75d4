// Package sqlite provides the SQLite-backed order repository.
//
// Order lines and the shipping address snapshot are stored as JSON TEXT in
// the order row: the aggregate is always read and written whole, and the
// core never queries into individual lines. Timestamps are RFC3339 TEXT,
// the SQLite idiom.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mincheol-dev/sneakershop/internal/order/domain"
	"github.com/mincheol-dev/sneakershop/internal/order/store"
	"github.com/mincheol-dev/sneakershop/internal/storage"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Repository struct{}

var _ store.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{}
}

type lineRecord struct {
	ProductID  string `json:"product_id"`
	VariantID  string `json:"variant_id"`
	Size       string `json:"size"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	CartLineID string `json:"cart_line_id,omitempty"`
}

type addressRecord struct {
	Receiver      string `json:"receiver"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DetailAddress string `json:"detail_address"`
	ZipCode       string `json:"zip_code"`
}

func (r *Repository) Insert(ctx context.Context, q storage.Querier, o *domain.Order) error {
	const stmt = `
		INSERT INTO orders
			(id, user_id, lines, total_price, shipping_fee, shipping_address,
			 status, payment_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	lines, err := json.Marshal(encodeLines(o.Lines))
	if err != nil {
		return fmt.Errorf("order store: encode lines: %w", err)
	}
	addr, err := json.Marshal(encodeAddress(o.ShippingAddress))
	if err != nil {
		return fmt.Errorf("order store: encode address: %w", err)
	}

	_, err = q.ExecContext(ctx, stmt,
		o.ID,
		o.UserID,
		string(lines),
		o.TotalPrice,
		o.ShippingFee,
		string(addr),
		string(o.Status),
		o.PaymentRef,
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicatePayment
		}
		return fmt.Errorf("order store: insert %s: %w", o.ID, err)
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, q storage.Querier, id string, to domain.Status) error {
	var current string
	err := q.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("order store: read status %s: %w", id, err)
	}

	if !domain.Status(current).CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}

	// The WHERE status guard makes the write a compare-and-update: a
	// concurrent transition that committed first leaves zero rows here.
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now().UTC()), id, current,
	)
	if err != nil {
		return fmt.Errorf("order store: update status %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order store: update status %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, q storage.Querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("order store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order store: delete %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, user_id, lines, total_price, shipping_fee, shipping_address,
	       status, payment_ref, created_at, updated_at
	FROM   orders`

func (r *Repository) GetByID(ctx context.Context, q storage.Querier, id string) (*domain.Order, error) {
	row := q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order store: get %s: %w", id, err)
	}
	return o, nil
}

func (r *Repository) ListByUser(ctx context.Context, q storage.Querier, userID string) ([]*domain.Order, error) {
	rows, err := q.QueryContext(ctx, selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("order store: list by user %s: %w", userID, err)
	}
	return collectOrders(rows)
}

func (r *Repository) ListAll(ctx context.Context, q storage.Querier) ([]*domain.Order, error) {
	rows, err := q.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("order store: list all: %w", err)
	}
	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o       domain.Order
		lines   string
		addr    string
		status  string
		created string
		updated string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &lines, &o.TotalPrice, &o.ShippingFee, &addr,
		&status, &o.PaymentRef, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	var recs []lineRecord
	if err := json.Unmarshal([]byte(lines), &recs); err != nil {
		return nil, fmt.Errorf("order store: decode lines for %s: %w", o.ID, err)
	}
	o.Lines = decodeLines(recs)

	var addrRec addressRecord
	if err := json.Unmarshal([]byte(addr), &addrRec); err != nil {
		return nil, fmt.Errorf("order store: decode address for %s: %w", o.ID, err)
	}
	o.ShippingAddress = decodeAddress(addrRec)

	o.Status = domain.Status(status)
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order store: iterate: %w", err)
	}
	return out, nil
}

func encodeLines(lines []domain.Line) []lineRecord {
	out := make([]lineRecord, len(lines))
	for i, l := range lines {
		out[i] = lineRecord{
			ProductID:  l.ProductID,
			VariantID:  l.VariantID,
			Size:       l.Size,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			CartLineID: l.CartLineID,
		}
	}
	return out
}

func decodeLines(recs []lineRecord) []domain.Line {
	out := make([]domain.Line, len(recs))
	for i, rec := range recs {
		out[i] = domain.Line{
			ProductID:  rec.ProductID,
			VariantID:  rec.VariantID,
			Size:       rec.Size,
			Quantity:   rec.Quantity,
			UnitPrice:  rec.UnitPrice,
			CartLineID: rec.CartLineID,
		}
	}
	return out
}

func encodeAddress(a domain.ShippingAddress) addressRecord {
	return addressRecord{
		Receiver:      a.Receiver,
		Phone:         a.Phone,
		Address:       a.Address,
		DetailAddress: a.DetailAddress,
		ZipCode:       a.ZipCode,
	}
}

func decodeAddress(rec addressRecord) domain.ShippingAddress {
	return domain.ShippingAddress{
		Receiver:      rec.Receiver,
		Phone:         rec.Phone,
		Address:       rec.Address,
		DetailAddress: rec.DetailAddress,
		ZipCode:       rec.ZipCode,
	}
}

// isUniqueViolation matches only SQLITE_CONSTRAINT_UNIQUE: payment_ref is the
// single UNIQUE column on orders, so other constraint breaches (the id primary
// key included) surface as plain insert errors.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
