// Package loss records stock written off outside of sales.
package loss

import (
	"context"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// Reason classifies why stock was written off.
type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonDamaged Reason = "damaged"
	ReasonBroken  Reason = "broken"
	ReasonOther   Reason = "other"
)

// ValidReason reports whether r is a known write-off reason.
func ValidReason(r Reason) bool {
	switch r {
	case ReasonExpired, ReasonDamaged, ReasonBroken, ReasonOther:
		return true
	}
	return false
}

// Record is a single write-off from one batch.
type Record struct {
	entity.BaseDocument

	ProductID id.ID          `db:"product_id" json:"productId"`
	BatchID   id.ID          `db:"batch_id" json:"batchId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Reason    Reason         `db:"reason" json:"reason"`

	// CostValue is quantity * product cost price at write-off time,
	// denormalized for loss reports
	CostValue types.Money `db:"cost_value" json:"costValue"`

	Note string `db:"note" json:"note,omitempty"`
}

// Validate implements Validatable interface.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.ProductID) || id.IsNil(r.BatchID) {
		return apperror.NewValidation("product and batch are required")
	}
	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("loss quantity must be positive").
			WithDetail("field", "quantity")
	}
	if !ValidReason(r.Reason) {
		return apperror.NewValidation("unknown loss reason").
			WithDetail("reason", string(r.Reason))
	}
	return nil
}
