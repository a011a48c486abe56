package dto

import (
	"time"

	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/inventory"
)

// CreateBatchRequest receives a delivery into stock.
type CreateBatchRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`

	ExpiryDate *time.Time `json:"expiryDate"`

	DiscountPercent int64      `json:"discountPercent"`
	DiscountStart   *time.Time `json:"discountStart"`
	DiscountEnd     *time.Time `json:"discountEnd"`

	Supplier string `json:"supplier"`
	Note     string `json:"note"`
}

// ToEntity converts request to a new batch.
func (r CreateBatchRequest) ToEntity() (*inventory.Batch, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, err
	}
	b := inventory.NewBatch(productID, r.Quantity)
	b.ExpiryDate = r.ExpiryDate
	b.DiscountPercent = r.DiscountPercent
	b.DiscountStart = r.DiscountStart
	b.DiscountEnd = r.DiscountEnd
	return b, nil
}

// BatchResponse represents a batch in API responses.
type BatchResponse struct {
	BaseResponse
	ProductID       string         `json:"productId"`
	Quantity        types.Quantity `json:"quantity"`
	ExpiryDate      *time.Time     `json:"expiryDate,omitempty"`
	ExpiredHandled  bool           `json:"expiredHandled"`
	DiscountPercent int64          `json:"discountPercent"`
	DiscountStart   *time.Time     `json:"discountStart,omitempty"`
	DiscountEnd     *time.Time     `json:"discountEnd,omitempty"`
}

// FromBatch creates BatchResponse from domain entity.
func FromBatch(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		BaseResponse:    FromBaseDocument(b.BaseDocument),
		ProductID:       b.ProductID.String(),
		Quantity:        b.Quantity,
		ExpiryDate:      b.ExpiryDate,
		ExpiredHandled:  b.ExpiredHandled,
		DiscountPercent: b.DiscountPercent,
		DiscountStart:   b.DiscountStart,
		DiscountEnd:     b.DiscountEnd,
	}
}

// OnHandResponse reports total remaining stock for a product.
type OnHandResponse struct {
	ProductID string         `json:"productId"`
	OnHand    types.Quantity `json:"onHand"`
}

// RestockLogResponse is one delivery record.
type RestockLogResponse struct {
	BaseResponse
	ProductID string         `json:"productId"`
	BatchID   string         `json:"batchId"`
	Quantity  types.Quantity `json:"quantity"`
	Supplier  string         `json:"supplier,omitempty"`
	Note      string         `json:"note,omitempty"`
}

// FromRestockLog creates RestockLogResponse from domain entity.
func FromRestockLog(l *inventory.RestockLog) RestockLogResponse {
	return RestockLogResponse{
		BaseResponse: FromBaseDocument(l.BaseDocument),
		ProductID:    l.ProductID.String(),
		BatchID:      l.BatchID.String(),
		Quantity:     l.Quantity,
		Supplier:     l.Supplier,
		Note:         l.Note,
	}
}
