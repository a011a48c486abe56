package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillage/internal/core/id"
	"tillage/internal/domain/sales"
	"tillage/internal/domain/shift"
	"tillage/internal/infrastructure/storage/postgres"
)

const (
	transactionTable = "sales_transactions"
	saleItemTable    = "sales_items"
	saleLogTable     = "sales_logs"
)

// SalesRepo implements sales.Repository. Transactions go through the
// document base; item and log rows are bulk-inserted with COPY when a
// transaction is active.
type SalesRepo struct {
	*BaseDocumentRepo[*sales.Transaction]
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo(txManager *postgres.TxManager) *SalesRepo {
	return &SalesRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sales.Transaction](
			txManager,
			transactionTable,
			postgres.ExtractDBColumns[sales.Transaction](),
			func() *sales.Transaction { return &sales.Transaction{} },
		),
	}
}

// CreateTransaction inserts the checkout envelope.
func (r *SalesRepo) CreateTransaction(ctx context.Context, t *sales.Transaction) error {
	return r.Create(ctx, t)
}

// GetTransaction retrieves a transaction by ID.
func (r *SalesRepo) GetTransaction(ctx context.Context, txnID id.ID) (*sales.Transaction, error) {
	return r.GetByID(ctx, txnID)
}

var saleItemColumns = []string{
	"id", "deletion_mark", "version", "attributes",
	"transaction_id", "product_id", "batch_id",
	"quantity", "unit_price", "cost_price", "profit",
}

// SaveItems bulk-inserts allocation rows. Uses COPY inside the checkout
// transaction, plain insert otherwise.
func (r *SalesRepo) SaveItems(ctx context.Context, items []*sales.Item) error {
	if len(items) == 0 {
		return nil
	}

	txm := r.TxManager()
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(items))
		for _, it := range items {
			rows = append(rows, []any{
				it.ID, it.DeletionMark, it.Version, it.Attributes,
				it.TransactionID, it.ProductID, it.BatchID,
				it.Quantity, it.UnitPrice, it.CostPrice, it.Profit,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleItemTable, saleItemColumns, rows); err != nil {
			return fmt.Errorf("copy items: %w", err)
		}
		return nil
	}

	q := r.Builder().Insert(saleItemTable).Columns(saleItemColumns...)
	for _, it := range items {
		q = q.Values(
			it.ID, it.DeletionMark, it.Version, it.Attributes,
			it.TransactionID, it.ProductID, it.BatchID,
			it.Quantity, it.UnitPrice, it.CostPrice, it.Profit,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

var saleLogColumns = []string{
	"id", "deletion_mark", "version", "attributes",
	"transaction_id", "product_id", "batch_id",
	"quantity", "action", "performed_by", "performed_at",
}

// SaveLogs bulk-inserts audit rows.
func (r *SalesRepo) SaveLogs(ctx context.Context, logs []*sales.Log) error {
	if len(logs) == 0 {
		return nil
	}

	txm := r.TxManager()
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, []any{
				l.ID, l.DeletionMark, l.Version, l.Attributes,
				l.TransactionID, l.ProductID, l.BatchID,
				l.Quantity, l.Action, l.PerformedBy, l.PerformedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleLogTable, saleLogColumns, rows); err != nil {
			return fmt.Errorf("copy logs: %w", err)
		}
		return nil
	}

	q := r.Builder().Insert(saleLogTable).Columns(saleLogColumns...)
	for _, l := range logs {
		q = q.Values(
			l.ID, l.DeletionMark, l.Version, l.Attributes,
			l.TransactionID, l.ProductID, l.BatchID,
			l.Quantity, l.Action, l.PerformedBy, l.PerformedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert logs: %w", err)
	}
	return nil
}

// AttachReceipt backfills the receipt artifact reference after commit.
func (r *SalesRepo) AttachReceipt(ctx context.Context, txnID id.ID, ref string) error {
	q := r.Builder().
		Update(transactionTable).
		Set("receipt_ref", ref).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": txnID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("attach receipt: %w", err)
	}
	return nil
}

// ListItems returns the allocation rows of a transaction.
func (r *SalesRepo) ListItems(ctx context.Context, txnID id.ID) ([]*sales.Item, error) {
	q := r.Builder().
		Select(saleItemColumns...).
		From(saleItemTable).
		Where(squirrel.Eq{"transaction_id": txnID}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*sales.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (r *SalesRepo) ListTransactions(ctx context.Context, f sales.ListFilter) ([]*sales.Transaction, error) {
	q := r.baseSelect().
		OrderBy("created_at DESC")

	if f.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *f.CashierID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	if f.IsRefund != nil {
		q = q.Where(squirrel.Eq{"is_refund": *f.IsRefund})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []*sales.Transaction
	if err := pgxscan.Select(ctx, r.Querier(ctx), &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// TotalsByCashier aggregates a cashier's transactions in a window.
// Total cash is the net drawer movement: cash refunds carry negative
// amounts and reduce it.
func (r *SalesRepo) TotalsByCashier(ctx context.Context, cashierID id.ID, from, to time.Time) (shift.SaleTotals, error) {
	sql := `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE NOT is_refund), 0) AS sales_count,
			COALESCE(SUM(total_amount) FILTER (WHERE NOT is_refund), 0) AS total_sales,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_method = 'cash'), 0) AS total_cash,
			COALESCE(SUM(-total_amount) FILTER (WHERE is_refund), 0) AS refund_total
		FROM sales_transactions
		WHERE cashier_id = $1
		  AND created_at >= $2
		  AND created_at <= $3
	`

	var totals shift.SaleTotals
	if err := pgxscan.Get(ctx, r.Querier(ctx), &totals, sql, cashierID, from, to); err != nil {
		return shift.SaleTotals{}, fmt.Errorf("totals by cashier: %w", err)
	}
	return totals, nil
}

// Ensure interface compliance.
var _ sales.Repository = (*SalesRepo)(nil)
