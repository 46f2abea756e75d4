// Package store defines the persistence port for the order aggregate.
package store

import (
	"context"
	"errors"

	"github.com/mincheol-dev/sneakershop/internal/order/domain"
	"github.com/mincheol-dev/sneakershop/internal/storage"
)

var (
	ErrNotFound = errors.New("order store: not found")

	// ErrDuplicatePayment guards against retried submissions and replayed
	// payment confirmations: a second insert sharing a payment reference
	// is rejected by the unique constraint.
	ErrDuplicatePayment = errors.New("order store: duplicate payment reference")
)

type Repository interface {
	Insert(ctx context.Context, q storage.Querier, o *domain.Order) error

	// UpdateStatus verifies the order's current status is an allowed
	// predecessor of to before writing. Returns ErrNotFound or
	// domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, q storage.Querier, id string, to domain.Status) error

	// Delete hard-removes the row. Administrative path only.
	Delete(ctx context.Context, q storage.Querier, id string) error

	GetByID(ctx context.Context, q storage.Querier, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, q storage.Querier, userID string) ([]*domain.Order, error)
	ListAll(ctx context.Context, q storage.Querier) ([]*domain.Order, error)
}
