// Package inventory tracks stock as dated batches and provides the
// FIFO ledger used by sales, losses and restocking.
package inventory

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// Batch is a received lot of a single product. Quantity is mutable:
// sales and losses deduct from it, refunds restore to it.
type Batch struct {
	entity.BaseDocument

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity currently remaining in this batch
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ExpiryDate is optional; non-perishables leave it null
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// ExpiredHandled marks a past-expiry batch as already written off
	// or otherwise dealt with, so it stops raising alerts
	ExpiredHandled bool `db:"expired_handled" json:"expiredHandled"`

	// Promotional discount window, percent off the product selling price
	DiscountPercent int64      `db:"discount_percent" json:"discountPercent"`
	DiscountStart   *time.Time `db:"discount_start" json:"discountStart,omitempty"`
	DiscountEnd     *time.Time `db:"discount_end" json:"discountEnd,omitempty"`
}

// NewBatch creates a batch with generated ID and timestamps.
func NewBatch(productID id.ID, qty types.Quantity) *Batch {
	return &Batch{
		BaseDocument: entity.NewBaseDocument(),
		ProductID:    productID,
		Quantity:     qty,
	}
}

// Validate implements Validatable interface.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if b.Quantity.IsNegative() {
		return apperror.NewValidation("batch quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if b.DiscountPercent < 0 || b.DiscountPercent > 100 {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	if b.DiscountPercent > 0 {
		if b.DiscountStart == nil || b.DiscountEnd == nil {
			return apperror.NewValidation("discount window is required when discount percent is set")
		}
		if b.DiscountEnd.Before(*b.DiscountStart) {
			return apperror.NewValidation("discount end precedes discount start")
		}
	}
	return nil
}

// IsExpired reports whether the batch is past its expiry date.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// DiscountActive reports whether the promotional window covers now.
// Outside the window the discount contributes nothing.
func (b *Batch) DiscountActive(now time.Time) bool {
	if b.DiscountPercent <= 0 || b.DiscountStart == nil || b.DiscountEnd == nil {
		return false
	}
	return !now.Before(*b.DiscountStart) && !now.After(*b.DiscountEnd)
}

// EffectiveUnitPrice returns the per-unit price for goods drawn from
// this batch: the product selling price, reduced by the batch discount
// when its window is active.
func (b *Batch) EffectiveUnitPrice(sellingPrice types.Money, now time.Time) types.Money {
	if b.DiscountActive(now) {
		return types.ApplyPercentDiscount(sellingPrice, b.DiscountPercent)
	}
	return types.RoundMoney(sellingPrice)
}

// RestockLog records a received delivery for traceability.
type RestockLog struct {
	entity.BaseDocument

	ProductID id.ID          `db:"product_id" json:"productId"`
	BatchID   id.ID          `db:"batch_id" json:"batchId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Supplier  string         `db:"supplier" json:"supplier,omitempty"`
	Note      string         `db:"note" json:"note,omitempty"`
}

// Validate implements Validatable interface.
func (r *RestockLog) Validate(ctx context.Context) error {
	if id.IsNil(r.ProductID) || id.IsNil(r.BatchID) {
		return apperror.NewValidation("product and batch are required")
	}
	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("restock quantity must be positive")
	}
	return nil
}
