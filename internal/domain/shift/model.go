// Package shift tracks cashier shifts. An open shift is a precondition
// for ringing up sales.
package shift

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// CashierShift is one cashier's working session at the register.
type CashierShift struct {
	entity.BaseDocument

	CashierID id.ID `db:"cashier_id" json:"cashierId"`

	StartTime time.Time  `db:"start_time" json:"startTime"`
	EndTime   *time.Time `db:"end_time" json:"endTime,omitempty"`

	// StartingCash is the float counted into the drawer at open
	StartingCash types.Money `db:"starting_cash" json:"startingCash"`

	// EndingCashReported is what the cashier counted at close
	EndingCashReported *types.Money `db:"ending_cash_reported" json:"endingCashReported,omitempty"`

	IsClosed bool `db:"is_closed" json:"isClosed"`
}

// NewCashierShift opens a shift for the cashier starting now.
func NewCashierShift(cashierID id.ID, startingCash types.Money) *CashierShift {
	return &CashierShift{
		BaseDocument: entity.NewBaseDocument(),
		CashierID:    cashierID,
		StartTime:    time.Now().UTC(),
		StartingCash: startingCash,
	}
}

// Validate implements Validatable interface.
func (s *CashierShift) Validate(ctx context.Context) error {
	if id.IsNil(s.CashierID) {
		return apperror.NewValidation("cashier is required")
	}
	if s.StartingCash.IsNegative() {
		return apperror.NewValidation("starting cash cannot be negative").
			WithDetail("field", "startingCash")
	}
	if s.IsClosed && s.EndTime == nil {
		return apperror.NewValidation("closed shift must have an end time")
	}
	return nil
}

// Summary reports what happened during a shift, returned at close.
type Summary struct {
	ShiftID   id.ID     `json:"shiftId"`
	CashierID id.ID     `json:"cashierId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	SalesCount  int         `json:"salesCount"`
	TotalSales  types.Money `json:"totalSales"`
	TotalCash   types.Money `json:"totalCash"`
	RefundTotal types.Money `json:"refundTotal"`

	StartingCash       types.Money  `json:"startingCash"`
	ExpectedCash       types.Money  `json:"expectedCash"`
	EndingCashReported *types.Money `json:"endingCashReported,omitempty"`
	CashDifference     *types.Money `json:"cashDifference,omitempty"`
}
