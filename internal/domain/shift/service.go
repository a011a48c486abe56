package shift

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/pkg/logger"
)

// Repository persists shifts.
type Repository interface {
	Create(ctx context.Context, s *CashierShift) error

	// GetOpenByCashier returns the cashier's open shift, or not found.
	GetOpenByCashier(ctx context.Context, cashierID id.ID) (*CashierShift, error)

	// GetOpenByCashierForUpdate locks the open shift row for closing.
	GetOpenByCashierForUpdate(ctx context.Context, cashierID id.ID) (*CashierShift, error)

	Update(ctx context.Context, s *CashierShift) error

	List(ctx context.Context, cashierID *id.ID, limit int) ([]*CashierShift, error)
}

// SaleTotals aggregates a cashier's sales inside a time window.
type SaleTotals struct {
	SalesCount  int         `db:"sales_count"`
	TotalSales  types.Money `db:"total_sales"`
	TotalCash   types.Money `db:"total_cash"`
	RefundTotal types.Money `db:"refund_total"`
}

// SalesSummarizer is implemented by the sales repository.
type SalesSummarizer interface {
	TotalsByCashier(ctx context.Context, cashierID id.ID, from, to time.Time) (SaleTotals, error)
}

// Service opens and closes shifts and answers the open-shift
// precondition for the sale processor.
type Service struct {
	repo      Repository
	sales     SalesSummarizer
	txManager tx.Manager
}

// NewService creates the shift service.
func NewService(repo Repository, sales SalesSummarizer, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		sales:     sales,
		txManager: txManager,
	}
}

// HasOpenShift reports whether the cashier currently has an open shift.
func (s *Service) HasOpenShift(ctx context.Context, cashierID id.ID) (bool, error) {
	_, err := s.repo.GetOpenByCashier(ctx, cashierID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Open starts a shift. A cashier can hold at most one open shift.
func (s *Service) Open(ctx context.Context, cashierID id.ID, startingCash types.Money) (*CashierShift, error) {
	sh := NewCashierShift(cashierID, startingCash)
	if err := sh.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.repo.GetOpenByCashierForUpdate(ctx, cashierID)
		if err == nil {
			return apperror.NewConflict("cashier already has an open shift").
				WithDetail("cashier_id", cashierID.String())
		}
		if !apperror.IsNotFound(err) {
			return err
		}
		return s.repo.Create(ctx, sh)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift opened",
		"shift_id", sh.ID.String(),
		"cashier_id", cashierID.String(),
		"starting_cash", startingCash.String())
	return sh, nil
}

// Close ends the cashier's open shift and returns the summary.
// endingCash is what the cashier counted in the drawer; nil skips the
// cash reconciliation part of the summary.
func (s *Service) Close(ctx context.Context, cashierID id.ID, endingCash *types.Money) (*Summary, error) {
	var summary *Summary

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sh, err := s.repo.GetOpenByCashierForUpdate(ctx, cashierID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewConflict("cashier has no open shift").
					WithDetail("cashier_id", cashierID.String())
			}
			return err
		}

		now := time.Now().UTC()
		totals, err := s.sales.TotalsByCashier(ctx, cashierID, sh.StartTime, now)
		if err != nil {
			return err
		}

		sh.EndTime = &now
		sh.IsClosed = true
		sh.EndingCashReported = endingCash
		if err := s.repo.Update(ctx, sh); err != nil {
			return err
		}

		expected := types.RoundMoney(sh.StartingCash.Add(totals.TotalCash))
		summary = &Summary{
			ShiftID:      sh.ID,
			CashierID:    cashierID,
			StartTime:    sh.StartTime,
			EndTime:      now,
			SalesCount:   totals.SalesCount,
			TotalSales:   types.RoundMoney(totals.TotalSales),
			TotalCash:    types.RoundMoney(totals.TotalCash),
			RefundTotal:  types.RoundMoney(totals.RefundTotal),
			StartingCash: sh.StartingCash,
			ExpectedCash: expected,
		}
		if endingCash != nil {
			reported := types.RoundMoney(*endingCash)
			diff := types.RoundMoney(reported.Sub(expected))
			summary.EndingCashReported = &reported
			summary.CashDifference = &diff
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shift closed",
		"shift_id", summary.ShiftID.String(),
		"cashier_id", cashierID.String(),
		"sales_count", summary.SalesCount,
		"total_sales", summary.TotalSales.String())
	return summary, nil
}

// Current returns the cashier's open shift.
func (s *Service) Current(ctx context.Context, cashierID id.ID) (*CashierShift, error) {
	return s.repo.GetOpenByCashier(ctx, cashierID)
}

// History lists recent shifts, optionally for one cashier.
func (s *Service) History(ctx context.Context, cashierID *id.ID, limit int) ([]*CashierShift, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.List(ctx, cashierID, limit)
}
