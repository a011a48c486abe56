package inventory

import (
	"context"

	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// Repository persists batches and restock logs.
//
// The ForUpdate variants take row locks and must run inside a
// transaction; the tx manager puts the transaction in the context.
type Repository interface {
	Create(ctx context.Context, batch *Batch) error

	GetByID(ctx context.Context, batchID id.ID) (*Batch, error)

	// GetForUpdate locks the batch row for the current transaction.
	GetForUpdate(ctx context.Context, batchID id.ID) (*Batch, error)

	// AvailableForUpdate returns non-empty batches of a product in FIFO
	// order (earliest expiry first, null expiry last, then oldest batch),
	// locking every returned row.
	AvailableForUpdate(ctx context.Context, productID id.ID) ([]*Batch, error)

	// LatestForUpdate returns the most recent batch of a product
	// (latest expiry first, then newest batch), locked, regardless of
	// remaining quantity. Refunds restore stock into it.
	LatestForUpdate(ctx context.Context, productID id.ID) (*Batch, error)

	// Update persists quantity and expired-handled changes with
	// optimistic locking.
	Update(ctx context.Context, batch *Batch) error

	// ListByProduct returns all batches of a product, FIFO order.
	ListByProduct(ctx context.Context, productID id.ID) ([]*Batch, error)

	// TotalOnHand sums remaining quantity over all batches of a product.
	TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error)

	CreateRestockLog(ctx context.Context, log *RestockLog) error

	ListRestockLogs(ctx context.Context, productID id.ID, limit int) ([]*RestockLog, error)
}
