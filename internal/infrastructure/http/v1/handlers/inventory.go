package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillage/internal/domain/inventory"
	"tillage/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles batch and restock endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// CreateBatch handles POST /inventory/batches - receive a delivery.
func (h *InventoryHandler) CreateBatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batch, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateBatch(ctx, batch, req.Supplier, req.Note); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromBatch(batch)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// ListBatches handles GET /inventory/products/:id/batches - FIFO history.
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	batches, err := h.service.ListByProduct(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.BatchResponse, len(batches))
	for i, b := range batches {
		items[i] = dto.FromBatch(b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// TotalOnHand handles GET /inventory/products/:id/on-hand.
func (h *InventoryHandler) TotalOnHand(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	total, err := h.service.TotalOnHand(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OnHandResponse{
		ProductID: productID.String(),
		OnHand:    total,
	})
}

// RestockHistory handles GET /inventory/products/:id/restocks?limit=N.
func (h *InventoryHandler) RestockHistory(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	logs, err := h.service.RestockHistory(ctx, productID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.RestockLogResponse, len(logs))
	for i, l := range logs {
		items[i] = dto.FromRestockLog(l)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// MarkExpiredHandled handles POST /inventory/batches/:id/expired-handled.
func (h *InventoryHandler) MarkExpiredHandled(c *gin.Context) {
	ctx := c.Request.Context()

	batchID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkExpiredHandled(ctx, batchID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "batch marked as handled")
}
