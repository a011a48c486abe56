package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/domain/sales"
	"tillage/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles checkout and transaction history endpoints.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, service: service}
}

// Checkout handles POST /sales - the single entry point for both
// sales and refunds. The cashier is the authenticated user.
func (h *SalesHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()

	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saleReq, err := req.ToRequest(cashierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	result, err := h.service.CreateSale(ctx, saleReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CompleteIdempotency(c, http.StatusCreated, "application/json", result)
	c.JSON(http.StatusCreated, result)
}

// Get handles GET /sales/:id - one transaction with its items.
func (h *SalesHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	txnID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	txn, items, err := h.service.GetTransaction(ctx, txnID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(txn, items))
}

// Receipt handles GET /sales/:id/receipt - the rendered receipt text.
// Returns 404 when the sale has no receipt artifact, either because
// rendering is disabled or because it failed after commit.
func (h *SalesHandler) Receipt(c *gin.Context) {
	ctx := c.Request.Context()

	txnID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	txn, _, err := h.service.GetTransaction(ctx, txnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if txn.ReceiptRef == nil || *txn.ReceiptRef == "" {
		h.Error(c, apperror.NewNotFound("receipt", txnID.String()))
		return
	}

	body, err := os.ReadFile(*txn.ReceiptRef)
	if err != nil {
		h.Error(c, apperror.NewNotFound("receipt", txnID.String()))
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// List handles GET /sales with optional filters.
func (h *SalesHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := sales.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if cashierID := c.Query("cashierId"); cashierID != "" {
		parsed, err := id.Parse(cashierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cashierId format"))
			return
		}
		f.CashierID = &parsed
	}
	if isRefund := c.Query("isRefund"); isRefund != "" {
		val := isRefund == "true"
		f.IsRefund = &val
	}
	if from, ok := h.ParseTimeQuery(c, "from"); !ok {
		return
	} else if from != nil {
		f.From = from
	}
	if to, ok := h.ParseTimeQuery(c, "to"); !ok {
		return
	} else if to != nil {
		f.To = to
	}

	txns, err := h.service.ListTransactions(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, len(txns))
	for i, t := range txns {
		items[i] = dto.FromTransaction(t, nil)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
