package dto

import (
	"time"

	"tillage/internal/core/types"
	"tillage/internal/domain/shift"
)

// OpenShiftRequest starts a working session at the register.
type OpenShiftRequest struct {
	StartingCash types.Money `json:"startingCash"`
}

// CloseShiftRequest ends the session. EndingCash is what the cashier
// counted in the drawer; omitting it skips reconciliation.
type CloseShiftRequest struct {
	EndingCash *types.Money `json:"endingCash"`
}

// ShiftResponse represents a shift in API responses.
type ShiftResponse struct {
	BaseResponse
	CashierID          string       `json:"cashierId"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            *time.Time   `json:"endTime,omitempty"`
	StartingCash       types.Money  `json:"startingCash"`
	EndingCashReported *types.Money `json:"endingCashReported,omitempty"`
	IsClosed           bool         `json:"isClosed"`
}

// FromShift creates ShiftResponse from domain entity.
func FromShift(s *shift.CashierShift) ShiftResponse {
	return ShiftResponse{
		BaseResponse:       FromBaseDocument(s.BaseDocument),
		CashierID:          s.CashierID.String(),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		StartingCash:       s.StartingCash,
		EndingCashReported: s.EndingCashReported,
		IsClosed:           s.IsClosed,
	}
}
