// Package payment confirms claimed payment amounts against the external
// payment authority. Verification fails closed: any lookup failure or amount
// discrepancy aborts the surrounding operation, and nothing is retried here.
// A caller-level retry must reuse the same payment reference so the order
// store's uniqueness constraint prevents duplication.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrMismatch means the authority reported a different charged amount
	// than the client claimed. Treated as a forged or stale total.
	ErrMismatch = errors.New("payment: charged amount does not match order total")

	// ErrLookup covers transport failures, non-2xx responses and malformed
	// payloads from the payment authority.
	ErrLookup = errors.New("payment: lookup failed")
)

type Verifier interface {
	// Verify retrieves the authoritative charged amount for paymentRef and
	// requires exact equality with expectedTotal.
	Verify(ctx context.Context, paymentRef string, expectedTotal int64) error
}
