package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tillage/internal/core/types"
	"tillage/internal/domain/loss"
	"tillage/internal/infrastructure/storage/postgres"
)

const lossTable = "inv_loss_records"

// LossRepo implements loss.Repository.
type LossRepo struct {
	*BaseDocumentRepo[*loss.Record]
}

// NewLossRepo creates a new loss record repository.
func NewLossRepo(txManager *postgres.TxManager) *LossRepo {
	return &LossRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*loss.Record](
			txManager,
			lossTable,
			postgres.ExtractDBColumns[loss.Record](),
			func() *loss.Record { return &loss.Record{} },
		),
	}
}

// List returns write-offs matching the filter, newest first.
func (r *LossRepo) List(ctx context.Context, f loss.ListFilter) ([]*loss.Record, error) {
	q := r.baseSelect().
		OrderBy("created_at DESC")

	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": *f.Reason})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*loss.Record
	if err := pgxscan.Select(ctx, r.Querier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list losses: %w", err)
	}
	return records, nil
}

// TotalCost sums the cost value of losses in [from, to].
func (r *LossRepo) TotalCost(ctx context.Context, from, to time.Time) (types.Money, error) {
	q := r.Builder().
		Select("COALESCE(SUM(cost_value), 0)").
		From(lossTable).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil {
		if err == pgx.ErrNoRows {
			return types.Zero(), nil
		}
		return types.Zero(), fmt.Errorf("total loss cost: %w", err)
	}
	return total, nil
}

// Ensure interface compliance.
var _ loss.Repository = (*LossRepo)(nil)
