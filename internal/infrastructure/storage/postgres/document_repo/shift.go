package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/domain/shift"
	"tillage/internal/infrastructure/storage/postgres"
)

const shiftTable = "cashier_shifts"

// ShiftRepo implements shift.Repository.
type ShiftRepo struct {
	*BaseDocumentRepo[*shift.CashierShift]
}

// NewShiftRepo creates a new shift repository.
func NewShiftRepo(txManager *postgres.TxManager) *ShiftRepo {
	return &ShiftRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*shift.CashierShift](
			txManager,
			shiftTable,
			postgres.ExtractDBColumns[shift.CashierShift](),
			func() *shift.CashierShift { return &shift.CashierShift{} },
		),
	}
}

// GetOpenByCashier returns the cashier's open shift, or not found.
func (r *ShiftRepo) GetOpenByCashier(ctx context.Context, cashierID id.ID) (*shift.CashierShift, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"cashier_id": cashierID}).
		Where(squirrel.Eq{"is_closed": false}).
		Limit(1)

	s, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("open shift", cashierID.String())
		}
		return nil, err
	}
	return s, nil
}

// GetOpenByCashierForUpdate locks the open shift row for closing.
func (r *ShiftRepo) GetOpenByCashierForUpdate(ctx context.Context, cashierID id.ID) (*shift.CashierShift, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"cashier_id": cashierID}).
		Where(squirrel.Eq{"is_closed": false}).
		Suffix("FOR UPDATE")

	s, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("open shift", cashierID.String())
		}
		return nil, err
	}
	return s, nil
}

// List returns recent shifts, optionally for one cashier, newest first.
func (r *ShiftRepo) List(ctx context.Context, cashierID *id.ID, limit int) ([]*shift.CashierShift, error) {
	q := r.baseSelect().
		OrderBy("start_time DESC").
		Limit(uint64(limit))

	if cashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *cashierID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var shifts []*shift.CashierShift
	if err := pgxscan.Select(ctx, r.Querier(ctx), &shifts, sql, args...); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// Ensure interface compliance.
var _ shift.Repository = (*ShiftRepo)(nil)
