package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mincheol-dev/sneakershop/internal/order/domain"
	"github.com/mincheol-dev/sneakershop/internal/order/store"
	ordersqlite "github.com/mincheol-dev/sneakershop/internal/order/store/sqlite"
	storesqlite "github.com/mincheol-dev/sneakershop/internal/storage/sqlite"
)

func newDB(t *testing.T) *storesqlite.DB {
	t.Helper()
	db, err := storesqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newOrder(t *testing.T, id, userID, paymentRef string) *domain.Order {
	t.Helper()
	o, err := domain.New(id, userID, paymentRef,
		[]domain.Line{
			{ProductID: "p1", VariantID: "v1", Size: "260", Quantity: 2, UnitPrice: 45000, CartLineID: "c1"},
			{ProductID: "p2", VariantID: "v2", Size: "270", Quantity: 1, UnitPrice: 60000},
		},
		153000, 3000,
		domain.ShippingAddress{
			Receiver: "Lee", Phone: "010-1234-5678",
			Address: "Seoul", DetailAddress: "3F", ZipCode: "04524",
		},
	)
	require.NoError(t, err)
	return o
}

func TestInsertAndGetByID(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()
	o := newOrder(t, "o1", "u1", "pay_1")

	require.NoError(t, repo.Insert(context.Background(), db.Querier(), o))

	got, err := repo.GetByID(context.Background(), db.Querier(), "o1")
	require.NoError(t, err)

	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.UserID, got.UserID)
	assert.Equal(t, o.Lines, got.Lines)
	assert.Equal(t, o.TotalPrice, got.TotalPrice)
	assert.Equal(t, o.ShippingFee, got.ShippingFee)
	assert.Equal(t, o.ShippingAddress, got.ShippingAddress)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, o.PaymentRef, got.PaymentRef)
	assert.WithinDuration(t, o.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestInsertDuplicatePaymentRef(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()

	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_1")))

	err := repo.Insert(context.Background(), db.Querier(), newOrder(t, "o2", "u1", "pay_1"))
	assert.ErrorIs(t, err, store.ErrDuplicatePayment)
}

func TestInsertDuplicateID(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()

	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_1")))

	// An id collision is not a payment retry and must not be reported as one.
	err := repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_2"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrDuplicatePayment)
}

func TestGetByIDNotFound(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()

	_, err := repo.GetByID(context.Background(), db.Querier(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_1")))

	require.NoError(t, repo.UpdateStatus(context.Background(), db.Querier(), "o1", domain.StatusShipping))

	got, err := repo.GetByID(context.Background(), db.Querier(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipping, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_1")))

	// paid may not jump straight to delivered
	err := repo.UpdateStatus(context.Background(), db.Querier(), "o1", domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, repo.UpdateStatus(context.Background(), db.Querier(), "o1", domain.StatusCancelled))

	// terminal states reject everything, including repeat cancellation
	err = repo.UpdateStatus(context.Background(), db.Querier(), "o1", domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatusNotFound(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()

	err := repo.UpdateStatus(context.Background(), db.Querier(), "missing", domain.StatusShipping)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o1", "u1", "pay_1")))

	require.NoError(t, repo.Delete(context.Background(), db.Querier(), "o1"))

	_, err := repo.GetByID(context.Background(), db.Querier(), "o1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), db.Querier(), "o1"), store.ErrNotFound)
}

func TestListByUserAndListAll(t *testing.T) {
	db := newDB(t)
	repo := ordersqlite.NewRepository()

	first := newOrder(t, "o1", "u1", "pay_1")
	first.CreatedAt = first.CreatedAt.Add(-time.Hour)
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), first))
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o2", "u1", "pay_2")))
	require.NoError(t, repo.Insert(context.Background(), db.Querier(), newOrder(t, "o3", "u2", "pay_3")))

	mine, err := repo.ListByUser(context.Background(), db.Querier(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// newest first
	assert.Equal(t, "o2", mine[0].ID)
	assert.Equal(t, "o1", mine[1].ID)

	all, err := repo.ListAll(context.Background(), db.Querier())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
