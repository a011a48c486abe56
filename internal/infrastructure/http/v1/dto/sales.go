package dto

import (
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/sales"
)

// CartLineRequest is one requested product and quantity. Either barcode
// or productId identifies the product.
type CartLineRequest struct {
	Barcode   string         `json:"barcode"`
	ProductID *string        `json:"productId"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
}

// CheckoutRequest is the register payload for sales and refunds.
// The cashier comes from the authenticated session, not the body.
type CheckoutRequest struct {
	PaymentMethod  string            `json:"paymentMethod" binding:"required"`
	IsRefund       bool              `json:"isRefund"`
	Items          []CartLineRequest `json:"items" binding:"required"`
	AmountReceived *types.Money      `json:"amountReceived"`
	DiscountCode   string            `json:"discountCode"`
	PhoneNumber    string            `json:"phoneNumber"`
}

// ToRequest converts the payload to the domain checkout request.
func (r CheckoutRequest) ToRequest(cashierID id.ID) (*sales.CreateSaleRequest, error) {
	req := &sales.CreateSaleRequest{
		CashierID:      cashierID,
		PaymentMethod:  sales.PaymentMethod(r.PaymentMethod),
		IsRefund:       r.IsRefund,
		AmountReceived: r.AmountReceived,
		DiscountCode:   r.DiscountCode,
		PhoneNumber:    r.PhoneNumber,
	}
	for _, line := range r.Items {
		cl := sales.CartLine{
			Barcode:  line.Barcode,
			Quantity: line.Quantity,
		}
		if line.ProductID != nil && *line.ProductID != "" {
			productID, err := id.Parse(*line.ProductID)
			if err != nil {
				return nil, err
			}
			cl.ProductID = &productID
		}
		req.Items = append(req.Items, cl)
	}
	return req, nil
}

// TransactionResponse represents a committed transaction.
type TransactionResponse struct {
	BaseResponse
	CashierID      string       `json:"cashierId"`
	PaymentMethod  string       `json:"paymentMethod"`
	IsRefund       bool         `json:"isRefund"`
	TotalAmount    types.Money  `json:"totalAmount"`
	TotalProfit    types.Money  `json:"totalProfit"`
	AmountReceived *types.Money `json:"amountReceived,omitempty"`
	ChangeDue      *types.Money `json:"changeDue,omitempty"`
	DiscountCode   *string      `json:"discountCode,omitempty"`
	LoyaltyCode    *string      `json:"loyaltyCode,omitempty"`
	ReceiptRef     *string      `json:"receiptRef,omitempty"`

	Items []SaleItemResponse `json:"items,omitempty"`
}

// FromTransaction creates TransactionResponse from domain entity.
func FromTransaction(t *sales.Transaction, items []*sales.Item) TransactionResponse {
	resp := TransactionResponse{
		BaseResponse:   FromBaseDocument(t.BaseDocument),
		CashierID:      t.CashierID.String(),
		PaymentMethod:  string(t.PaymentMethod),
		IsRefund:       t.IsRefund,
		TotalAmount:    t.TotalAmount,
		TotalProfit:    t.TotalProfit,
		AmountReceived: t.AmountReceived,
		ChangeDue:      t.ChangeDue,
		DiscountCode:   t.DiscountCode,
		LoyaltyCode:    t.LoyaltyCode,
		ReceiptRef:     t.ReceiptRef,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, FromSaleItem(it))
	}
	return resp
}

// SaleItemResponse is one batch-level allocation.
type SaleItemResponse struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transactionId"`
	ProductID     string         `json:"productId"`
	BatchID       string         `json:"batchId"`
	Quantity      types.Quantity `json:"quantity"`
	UnitPrice     types.Money    `json:"unitPrice"`
	CostPrice     types.Money    `json:"costPrice"`
	Profit        types.Money    `json:"profit"`
}

// FromSaleItem creates SaleItemResponse from domain entity.
func FromSaleItem(it *sales.Item) SaleItemResponse {
	return SaleItemResponse{
		ID:            it.ID.String(),
		TransactionID: it.TransactionID.String(),
		ProductID:     it.ProductID.String(),
		BatchID:       it.BatchID.String(),
		Quantity:      it.Quantity,
		UnitPrice:     it.UnitPrice,
		CostPrice:     it.CostPrice,
		Profit:        it.Profit,
	}
}
