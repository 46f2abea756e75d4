// Package lifecycle orchestrates the payment verifier, inventory ledger and
// order store into atomic units.
//
// Creation runs in two stages: payment verification happens first, over the
// network, with no locks held; then stock decrement, order insert and the
// audit event commit in a single storage transaction. If any step inside the
// transaction fails, rollback discards every effect, so a decrement without
// its order (or vice versa) is never durable — even across a crash, since an
// unfinished transaction is aborted on recovery. The cart purge runs after
// commit and is best effort only.
//
// Cancellation is the compensating action for creation: the stock restore and
// the status write share one transaction, and the status state machine
// guarantees the restore fires at most once per order.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mincheol-dev/sneakershop/internal/cart"
	"github.com/mincheol-dev/sneakershop/internal/inventory"
	"github.com/mincheol-dev/sneakershop/internal/order/domain"
	"github.com/mincheol-dev/sneakershop/internal/order/eventlog"
	"github.com/mincheol-dev/sneakershop/internal/order/store"
	"github.com/mincheol-dev/sneakershop/internal/payment"
	"github.com/mincheol-dev/sneakershop/internal/storage"
)

const tracerName = "sneakershop/lifecycle"

type Manager struct {
	db       storage.TxRunner
	reader   storage.Querier
	orders   store.Repository
	ledger   inventory.Ledger
	events   eventlog.Repository
	verifier payment.Verifier
	purger   cart.Purger
	tracer   trace.Tracer
	log      *slog.Logger
}

func NewManager(
	db storage.TxRunner,
	reader storage.Querier,
	orders store.Repository,
	ledger inventory.Ledger,
	events eventlog.Repository,
	verifier payment.Verifier,
	purger cart.Purger,
	log *slog.Logger,
) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		db:       db,
		reader:   reader,
		orders:   orders,
		ledger:   ledger,
		events:   events,
		verifier: verifier,
		purger:   purger,
		tracer:   otel.Tracer(tracerName),
		log:      log,
	}
}

// CreateOrderRequest carries everything a confirmed checkout submits.
type CreateOrderRequest struct {
	Lines           []domain.Line
	TotalPrice      int64
	ShippingFee     int64
	ShippingAddress domain.ShippingAddress
	PaymentRef      string
}

// CreateOrder validates the claimed payment against the payment authority,
// then decrements stock and persists the order atomically. The order is born
// in status "paid".
func (m *Manager) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (_ *domain.Order, err error) {
	ctx, span := m.tracer.Start(ctx, "Lifecycle.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.user_id", userID),
			attribute.String("order.payment_ref", req.PaymentRef),
			attribute.Int("order.lines", len(req.Lines)),
		),
	)
	defer func() { endSpan(span, err) }()

	order, err := domain.New(uuid.NewString(), userID, req.PaymentRef,
		req.Lines, req.TotalPrice, req.ShippingFee, req.ShippingAddress)
	if err != nil {
		return nil, err
	}

	// Verification is a network call; it happens before the transaction
	// opens so no inventory lock spans the round trip.
	if err = m.verifier.Verify(ctx, req.PaymentRef, req.TotalPrice); err != nil {
		m.log.WarnContext(ctx, "payment verification failed",
			"payment_ref", req.PaymentRef, "error", err)
		return nil, err
	}

	err = m.db.InTx(ctx, func(q storage.Querier) error {
		if err := m.ledger.Decrement(ctx, q, stockLines(order.Lines)); err != nil {
			return err
		}
		if err := m.orders.Insert(ctx, q, order); err != nil {
			return err
		}
		entry := eventlog.NewEntry(ctx, order.ID, eventlog.KindCreated,
			fmt.Sprintf("payment %s, total %d", order.PaymentRef, order.TotalPrice))
		return m.events.Append(ctx, q, entry)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID))
	m.log.InfoContext(ctx, "order created",
		"order_id", order.ID, "user_id", userID, "total", order.TotalPrice)

	// Best effort: a failed purge leaves stale cart lines, never a broken
	// order, so the committed order is returned regardless.
	if ids := cartLineIDs(order.Lines); len(ids) > 0 {
		if purgeErr := m.purger.RemoveLines(ctx, userID, ids); purgeErr != nil {
			m.log.WarnContext(ctx, "cart purge failed",
				"order_id", order.ID, "user_id", userID, "error", purgeErr)
		}
	}

	return order, nil
}

// UpdateStatus advances the order through the state machine. Transitions into
// "cancelled" restore the order's stock in the same transaction as the status
// write; the InvalidTransition rejection of a repeat cancellation is what
// keeps the restore single-shot.
func (m *Manager) UpdateStatus(ctx context.Context, orderID string, to domain.Status) (_ *domain.Order, err error) {
	ctx, span := m.tracer.Start(ctx, "Lifecycle.UpdateStatus",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("order.to_status", string(to)),
		),
	)
	defer func() { endSpan(span, err) }()

	var updated *domain.Order
	err = m.db.InTx(ctx, func(q storage.Querier) error {
		order, err := m.orders.GetByID(ctx, q, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(to) {
			return domain.ErrInvalidTransition
		}

		if to == domain.StatusCancelled {
			if err := m.ledger.Restore(ctx, q, stockLines(order.Lines)); err != nil {
				return err
			}
		}
		if err := m.orders.UpdateStatus(ctx, q, orderID, to); err != nil {
			return err
		}

		kind := eventlog.KindStatusChanged
		if to == domain.StatusCancelled {
			kind = eventlog.KindCancelled
		}
		entry := eventlog.NewEntry(ctx, orderID, kind,
			fmt.Sprintf("%s -> %s", order.Status, to))
		if err := m.events.Append(ctx, q, entry); err != nil {
			return err
		}

		updated, err = m.orders.GetByID(ctx, q, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.log.InfoContext(ctx, "order status changed",
		"order_id", orderID, "status", string(to))
	return updated, nil
}

// ForceCancelAndDelete hard-removes an order, restoring its stock first
// unless it was already cancelled. Restore and delete commit together or not
// at all.
func (m *Manager) ForceCancelAndDelete(ctx context.Context, orderID string) (err error) {
	ctx, span := m.tracer.Start(ctx, "Lifecycle.ForceCancelAndDelete",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer func() { endSpan(span, err) }()

	err = m.db.InTx(ctx, func(q storage.Querier) error {
		order, err := m.orders.GetByID(ctx, q, orderID)
		if err != nil {
			return err
		}

		if order.Status != domain.StatusCancelled {
			if err := m.ledger.Restore(ctx, q, stockLines(order.Lines)); err != nil {
				return err
			}
		}
		if err := m.orders.Delete(ctx, q, orderID); err != nil {
			return err
		}

		entry := eventlog.NewEntry(ctx, orderID, eventlog.KindDeleted,
			fmt.Sprintf("deleted in status %s", order.Status))
		return m.events.Append(ctx, q, entry)
	})
	if err != nil {
		return err
	}

	m.log.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

// Read paths. Plain point lookups outside the transactional core.

func (m *Manager) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.orders.GetByID(ctx, m.reader, orderID)
}

func (m *Manager) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return m.orders.ListByUser(ctx, m.reader, userID)
}

func (m *Manager) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return m.orders.ListAll(ctx, m.reader)
}

// OrderHistory returns the committed event trail for one order.
func (m *Manager) OrderHistory(ctx context.Context, orderID string) ([]*eventlog.Entry, error) {
	return m.events.ListByOrder(ctx, m.reader, orderID)
}

func stockLines(lines []domain.Line) []inventory.Line {
	out := make([]inventory.Line, len(lines))
	for i, l := range lines {
		out[i] = inventory.Line{
			VariantID: l.VariantID,
			Size:      l.Size,
			Quantity:  l.Quantity,
		}
	}
	return out
}

func cartLineIDs(lines []domain.Line) []string {
	var ids []string
	for _, l := range lines {
		if l.CartLineID != "" {
			ids = append(ids, l.CartLineID)
		}
	}
	return ids
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errorLabel(err))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func errorLabel(err error) string {
	var insufficient *inventory.InsufficientError
	switch {
	case errors.Is(err, payment.ErrMismatch):
		return "PAYMENT_MISMATCH"
	case errors.Is(err, payment.ErrLookup):
		return "PAYMENT_LOOKUP_FAILED"
	case errors.As(err, &insufficient):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, store.ErrDuplicatePayment):
		return "DUPLICATE_PAYMENT_REF"
	case errors.Is(err, store.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, storage.ErrTxConflict):
		return "TX_CONFLICT"
	default:
		return "INTERNAL"
	}
}
