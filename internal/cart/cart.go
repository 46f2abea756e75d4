// Package cart exposes the shopping-cart collaborator as seen from the order
// core: after an order commits, the purchased lines are removed from the
// owner's cart. The purge is best effort and deliberately outside the order
// transaction — a failed purge leaves a stale cart line, never a broken order.
package cart

import "context"

// Line is a shopping-cart entry. ID is what order lines reference as
// CartLineID.
type Line struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Purger removes purchased lines from a user's cart.
type Purger interface {
	RemoveLines(ctx context.Context, userID string, lineIDs []string) error
}

// Store is the full cart collaborator surface this service touches.
type Store interface {
	Purger
	AddLine(ctx context.Context, userID string, line Line) error
	ListLines(ctx context.Context, userID string) ([]Line, error)
}
