package sales

import (
	"context"
	"time"

	"tillage/internal/core/id"
	"tillage/internal/domain/shift"
)

// Repository persists transactions, items and logs. Items and logs are
// bulk-inserted inside the checkout transaction.
type Repository interface {
	CreateTransaction(ctx context.Context, t *Transaction) error

	GetTransaction(ctx context.Context, txnID id.ID) (*Transaction, error)

	// SaveItems bulk-inserts allocation rows.
	SaveItems(ctx context.Context, items []*Item) error

	// SaveLogs bulk-inserts audit rows.
	SaveLogs(ctx context.Context, logs []*Log) error

	// AttachReceipt backfills the receipt artifact reference after
	// commit. Best effort, outside the checkout transaction.
	AttachReceipt(ctx context.Context, txnID id.ID, ref string) error

	ListItems(ctx context.Context, txnID id.ID) ([]*Item, error)

	ListTransactions(ctx context.Context, f ListFilter) ([]*Transaction, error)

	// TotalsByCashier aggregates a cashier's transactions in a window.
	// Implements the shift close summary.
	TotalsByCashier(ctx context.Context, cashierID id.ID, from, to time.Time) (shift.SaleTotals, error)
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	CashierID *id.ID
	From      *time.Time
	To        *time.Time
	IsRefund  *bool
	Limit     int
	Offset    int
}
