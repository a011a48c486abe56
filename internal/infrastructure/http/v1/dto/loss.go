package dto

import (
	"tillage/internal/core/types"
	"tillage/internal/domain/loss"
)

// RecordLossRequest writes off stock from one batch.
type RecordLossRequest struct {
	BatchID  string         `json:"batchId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
	Reason   string         `json:"reason" binding:"required"`
	Note     string         `json:"note"`
}

// LossResponse represents a loss record in API responses.
type LossResponse struct {
	BaseResponse
	ProductID string         `json:"productId"`
	BatchID   string         `json:"batchId"`
	Quantity  types.Quantity `json:"quantity"`
	Reason    string         `json:"reason"`
	CostValue types.Money    `json:"costValue"`
	Note      string         `json:"note,omitempty"`
}

// FromLoss creates LossResponse from domain entity.
func FromLoss(r *loss.Record) LossResponse {
	return LossResponse{
		BaseResponse: FromBaseDocument(r.BaseDocument),
		ProductID:    r.ProductID.String(),
		BatchID:      r.BatchID.String(),
		Quantity:     r.Quantity,
		Reason:       string(r.Reason),
		CostValue:    r.CostValue,
		Note:         r.Note,
	}
}

// LossTotalResponse sums the cost of losses over a period.
type LossTotalResponse struct {
	TotalCost types.Money `json:"totalCost"`
}
