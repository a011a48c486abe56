package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/inventory"
	"tillage/internal/infrastructure/storage/postgres"
)

const (
	batchTable      = "inv_batches"
	restockLogTable = "inv_restock_logs"
)

// BatchRepo implements inventory.Repository.
type BatchRepo struct {
	*BaseDocumentRepo[*inventory.Batch]
}

// NewBatchRepo creates a new batch repository.
func NewBatchRepo(txManager *postgres.TxManager) *BatchRepo {
	return &BatchRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*inventory.Batch](
			txManager,
			batchTable,
			postgres.ExtractDBColumns[inventory.Batch](),
			func() *inventory.Batch { return &inventory.Batch{} },
		),
	}
}

// AvailableForUpdate returns non-empty batches of a product in FIFO
// order, locking every returned row. Earliest expiry first, batches
// without expiry last, ties broken by batch ID (UUIDv7, so creation
// order).
func (r *BatchRepo) AvailableForUpdate(ctx context.Context, productID id.ID) ([]*inventory.Batch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Gt{"quantity": 0}).
		OrderBy("expiry_date ASC NULLS LAST", "id ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	if err := pgxscan.Select(ctx, r.Querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("available batches: %w", err)
	}
	return batches, nil
}

// LatestForUpdate returns the most recent batch of a product, locked,
// regardless of remaining quantity. Reverse of the FIFO order.
func (r *BatchRepo) LatestForUpdate(ctx context.Context, productID id.ID) (*inventory.Batch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("expiry_date DESC NULLS FIRST", "id DESC").
		Limit(1).
		Suffix("FOR UPDATE")

	b, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("batch", productID.String())
		}
		return nil, err
	}
	return b, nil
}

// ListByProduct returns all batches of a product in FIFO order.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*inventory.Batch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("expiry_date ASC NULLS LAST", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*inventory.Batch
	if err := pgxscan.Select(ctx, r.Querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// TotalOnHand sums remaining quantity over all batches of a product.
func (r *BatchRepo) TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	q := r.Builder().
		Select("COALESCE(SUM(quantity), 0)::bigint").
		From(batchTable).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var totalScaled int64
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&totalScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("total on hand: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(totalScaled), nil
}

// CreateRestockLog appends a delivery record.
func (r *BatchRepo) CreateRestockLog(ctx context.Context, log *inventory.RestockLog) error {
	data := postgres.StructToMap(log)
	cols := postgres.ExtractDBColumns[inventory.RestockLog]()

	filteredData := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(restockLogTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert restock log: %w", err)
	}
	return nil
}

// ListRestockLogs returns recent deliveries of a product, newest first.
func (r *BatchRepo) ListRestockLogs(ctx context.Context, productID id.ID, limit int) ([]*inventory.RestockLog, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[inventory.RestockLog]()...).
		From(restockLogTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var logs []*inventory.RestockLog
	if err := pgxscan.Select(ctx, r.Querier(ctx), &logs, sql, args...); err != nil {
		return nil, fmt.Errorf("list restock logs: %w", err)
	}
	return logs, nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*BatchRepo)(nil)
