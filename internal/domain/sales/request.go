package sales

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// CartLine is one requested product and quantity. Either Barcode or
// ProductID identifies the product.
type CartLine struct {
	Barcode   string         `json:"barcode,omitempty"`
	ProductID *id.ID         `json:"productId,omitempty"`
	Quantity  types.Quantity `json:"quantity"`
}

// CreateSaleRequest is the single entry point payload for checkout,
// both sales and refunds.
type CreateSaleRequest struct {
	CashierID     id.ID         `json:"cashierId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	IsRefund      bool          `json:"isRefund"`
	Items         []CartLine    `json:"items"`

	// AmountReceived is required for non-refund cash payments
	AmountReceived *types.Money `json:"amountReceived,omitempty"`

	DiscountCode string `json:"discountCode,omitempty"`

	// PhoneNumber opts the customer into loyalty accrual
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Validate checks the request shape before any storage access.
func (r *CreateSaleRequest) Validate(ctx context.Context) error {
	if id.IsNil(r.CashierID) {
		return apperror.NewValidation("cashier is required")
	}
	if !ValidPaymentMethod(r.PaymentMethod) {
		return apperror.NewValidation("payment method must be cash or card").
			WithDetail("paymentMethod", string(r.PaymentMethod))
	}
	if len(r.Items) == 0 {
		return apperror.NewValidation("cart is empty")
	}
	for i, line := range r.Items {
		if line.Barcode == "" && line.ProductID == nil {
			return apperror.NewValidation("cart line needs a barcode or product id").
				WithDetail("line", i)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("line", i).
				WithDetail("quantity", line.Quantity.String())
		}
	}
	if r.PaymentMethod == PaymentCash && !r.IsRefund && r.AmountReceived == nil {
		return apperror.NewValidation("amount received is required for cash payments")
	}
	return nil
}

// ItemResult is the per-allocation breakdown returned to the caller.
type ItemResult struct {
	ProductName    string         `json:"productName"`
	BatchID        id.ID          `json:"batchId"`
	Quantity       types.Quantity `json:"quantity"`
	UnitPrice      types.Money    `json:"unitPrice"`
	OriginalPrice  types.Money    `json:"originalPrice"`
	DiscountAmount types.Money    `json:"discountAmount"`
	Profit         types.Money    `json:"profit"`
}

// TransactionResult is returned from a committed checkout.
type TransactionResult struct {
	TransactionID id.ID         `json:"transactionId"`
	Timestamp     time.Time     `json:"timestamp"`
	TotalAmount   types.Money   `json:"totalAmount"`
	TotalProfit   types.Money   `json:"totalProfit"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`

	ChangeDue *types.Money `json:"changeDue,omitempty"`

	DiscountApplied bool   `json:"discountApplied"`
	DiscountCode    string `json:"discountCode,omitempty"`

	Items []ItemResult `json:"items"`

	// Warnings are non-fatal notes (expired batches, receipt failures)
	Warnings []string `json:"warnings,omitempty"`

	// LoyaltyCode is present only when this sale minted a new reward
	LoyaltyCode string `json:"loyaltyCode,omitempty"`

	ReceiptRef string `json:"receiptRef,omitempty"`
}
