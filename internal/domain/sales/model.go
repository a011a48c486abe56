// Package sales implements the checkout state machine: cart in,
// committed transaction with batch allocations out.
package sales

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// PaymentMethod enumerates accepted tenders.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// ValidPaymentMethod reports whether m is accepted at the register.
func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentCash || m == PaymentCard
}

// LogAction distinguishes batch deductions from restorations.
type LogAction string

const (
	ActionSold   LogAction = "sold"
	ActionRefund LogAction = "refund"
)

// Transaction is the checkout envelope. Immutable after commit except
// for receipt attachment and loyalty code backfill.
type Transaction struct {
	entity.BaseDocument

	CashierID     id.ID         `db:"cashier_id" json:"cashierId"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	IsRefund      bool          `db:"is_refund" json:"isRefund"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	TotalProfit types.Money `db:"total_profit" json:"totalProfit"`

	// Cash tender only
	AmountReceived *types.Money `db:"amount_received" json:"amountReceived,omitempty"`
	ChangeDue      *types.Money `db:"change_due" json:"changeDue,omitempty"`

	// DiscountCode is the redeemed voucher, if any
	DiscountCode *string `db:"discount_code" json:"discountCode,omitempty"`

	// LoyaltyCode is the reward minted by this sale, if any
	LoyaltyCode *string `db:"loyalty_code" json:"loyaltyCode,omitempty"`

	// ReceiptRef points at the rendered receipt artifact
	ReceiptRef *string `db:"receipt_ref" json:"receiptRef,omitempty"`
}

// Validate implements Validatable interface.
func (t *Transaction) Validate(ctx context.Context) error {
	if id.IsNil(t.CashierID) {
		return apperror.NewValidation("cashier is required")
	}
	if !ValidPaymentMethod(t.PaymentMethod) {
		return apperror.NewValidation("unknown payment method").
			WithDetail("paymentMethod", string(t.PaymentMethod))
	}
	return nil
}

// Item is one batch-level allocation inside a transaction. Quantity is
// signed: positive for sales, negative for refunds. Never updated, it
// is a historical ledger entry.
type Item struct {
	entity.BaseEntity

	TransactionID id.ID `db:"transaction_id" json:"transactionId"`
	ProductID     id.ID `db:"product_id" json:"productId"`
	BatchID       id.ID `db:"batch_id" json:"batchId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice is the post-discount price actually charged
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// CostPrice snapshot at sale time
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// Profit = (unit_price - cost_price) * quantity, signed
	Profit types.Money `db:"profit" json:"profit"`
}

// Log is the append-only audit row for each batch mutation.
type Log struct {
	entity.BaseEntity

	TransactionID id.ID          `db:"transaction_id" json:"transactionId"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	BatchID       id.ID          `db:"batch_id" json:"batchId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Action        LogAction      `db:"action" json:"action"`
	PerformedBy   id.ID          `db:"performed_by" json:"performedBy"`
	PerformedAt   time.Time      `db:"performed_at" json:"performedAt"`
}
