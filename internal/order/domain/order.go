package domain

import (
	"errors"
	"time"
)

var (
	ErrNoLines           = errors.New("order: at least one line is required")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("order: price must be zero or greater")
	ErrPaymentRefMissing = errors.New("order: payment reference is required")
	ErrInvalidTransition = errors.New("order: invalid status transition")
	ErrUnknownStatus     = errors.New("order: unknown status")
)

type Status string

const (
	StatusPaid      Status = "paid"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPaid, StatusShipping, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// CanTransitionTo enforces the order lifecycle:
// paid -> shipping -> delivered, with cancellation allowed from paid and
// shipping. delivered and cancelled are terminal.
func (s Status) CanTransitionTo(to Status) bool {
	switch s {
	case StatusPaid:
		return to == StatusShipping || to == StatusCancelled
	case StatusShipping:
		return to == StatusDelivered || to == StatusCancelled
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Line is one (product, variant, size, quantity, price) entry of an order.
// CartLineID links back to the shopping-cart entry it originated from, if any.
type Line struct {
	ProductID  string
	VariantID  string
	Size       string
	Quantity   int
	UnitPrice  int64
	CartLineID string
}

func (l Line) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

type ShippingAddress struct {
	Receiver      string
	Phone         string
	Address       string
	DetailAddress string
	ZipCode       string
}

// Order is the aggregate root. It is created fully formed in status "paid"
// and only ever mutated through the status state machine or hard deletion.
// PaymentRef is globally unique and doubles as the idempotency key for
// retried submissions.
type Order struct {
	ID              string
	UserID          string
	Lines           []Line
	TotalPrice      int64
	ShippingFee     int64
	ShippingAddress ShippingAddress
	Status          Status
	PaymentRef      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func New(id, userID, paymentRef string, lines []Line, totalPrice, shippingFee int64, addr ShippingAddress) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.UnitPrice < 0 {
			return nil, ErrInvalidPrice
		}
	}
	if totalPrice < 0 || shippingFee < 0 {
		return nil, ErrInvalidPrice
	}
	if paymentRef == "" {
		return nil, ErrPaymentRefMissing
	}

	now := time.Now().UTC()
	return &Order{
		ID:              id,
		UserID:          userID,
		Lines:           lines,
		TotalPrice:      totalPrice,
		ShippingFee:     shippingFee,
		ShippingAddress: addr,
		Status:          StatusPaid,
		PaymentRef:      paymentRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (o *Order) Clone() *Order {
	clone := *o
	clone.Lines = make([]Line, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}
