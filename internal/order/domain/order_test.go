package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"paid to shipping", StatusPaid, StatusShipping, true},
		{"paid to cancelled", StatusPaid, StatusCancelled, true},
		{"paid to delivered skips shipping", StatusPaid, StatusDelivered, false},
		{"shipping to delivered", StatusShipping, StatusDelivered, true},
		{"shipping to cancelled", StatusShipping, StatusCancelled, true},
		{"shipping back to paid", StatusShipping, StatusPaid, false},
		{"delivered is terminal", StatusDelivered, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPaid, false},
		{"double cancellation", StatusCancelled, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPaid.Terminal())
	assert.False(t, StatusShipping.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("shipping")
	require.NoError(t, err)
	assert.Equal(t, StatusShipping, st)

	_, err = ParseStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func validLines() []Line {
	return []Line{
		{ProductID: "p1", VariantID: "v1", Size: "260", Quantity: 2, UnitPrice: 5000},
	}
}

func TestNewOrder(t *testing.T) {
	addr := ShippingAddress{Receiver: "Kim", Address: "Seoul", ZipCode: "04524"}

	o, err := New("o1", "u1", "pay_1", validLines(), 10000, 0, addr)
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, "pay_1", o.PaymentRef)
	assert.Equal(t, addr, o.ShippingAddress)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestNewOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(lines []Line) ([]Line, string, int64)
		wantErr error
	}{
		{
			"no lines",
			func([]Line) ([]Line, string, int64) { return nil, "pay_1", 100 },
			ErrNoLines,
		},
		{
			"zero quantity",
			func(lines []Line) ([]Line, string, int64) {
				lines[0].Quantity = 0
				return lines, "pay_1", 100
			},
			ErrInvalidQuantity,
		},
		{
			"negative price",
			func(lines []Line) ([]Line, string, int64) {
				lines[0].UnitPrice = -1
				return lines, "pay_1", 100
			},
			ErrInvalidPrice,
		},
		{
			"negative total",
			func(lines []Line) ([]Line, string, int64) { return lines, "pay_1", -1 },
			ErrInvalidPrice,
		},
		{
			"missing payment reference",
			func(lines []Line) ([]Line, string, int64) { return lines, "", 100 },
			ErrPaymentRefMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, ref, total := tt.mutate(validLines())
			_, err := New("o1", "u1", ref, lines, total, 0, ShippingAddress{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLineSubtotal(t *testing.T) {
	l := Line{Quantity: 3, UnitPrice: 2500}
	assert.Equal(t, int64(7500), l.Subtotal())
}

func TestOrderClone(t *testing.T) {
	o, err := New("o1", "u1", "pay_1", validLines(), 10000, 0, ShippingAddress{})
	require.NoError(t, err)

	clone := o.Clone()
	clone.Lines[0].Quantity = 99

	assert.Equal(t, 2, o.Lines[0].Quantity)
}
