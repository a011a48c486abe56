package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/domain/loss"
	"tillage/internal/infrastructure/http/v1/dto"
)

// LossHandler handles stock write-off endpoints.
type LossHandler struct {
	*BaseHandler
	service *loss.Service
}

// NewLossHandler creates a loss handler.
func NewLossHandler(base *BaseHandler, service *loss.Service) *LossHandler {
	return &LossHandler{BaseHandler: base, service: service}
}

// Record handles POST /losses - write off stock from one batch.
func (h *LossHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordLossRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batchID, err := id.Parse(req.BatchID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batchId format"))
		return
	}

	rec, err := h.service.RecordLoss(ctx, batchID, req.Quantity, loss.Reason(req.Reason), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromLoss(rec)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /losses with optional filters.
func (h *LossHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	f := loss.ListFilter{
		Limit: h.ParseIntQuery(c, "limit", 50),
	}

	if productID := c.Query("productId"); productID != "" {
		parsed, err := id.Parse(productID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		f.ProductID = &parsed
	}
	if reason := c.Query("reason"); reason != "" {
		r := loss.Reason(reason)
		if !loss.ValidReason(r) {
			h.Error(c, apperror.NewValidation("unknown loss reason").WithDetail("reason", reason))
			return
		}
		f.Reason = &r
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

	records, err := h.service.List(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LossResponse, len(records))
	for i, r := range records {
		items[i] = dto.FromLoss(r)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// TotalCost handles GET /losses/total?from=...&to=...
func (h *LossHandler) TotalCost(c *gin.Context) {
	ctx := c.Request.Context()

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v, ok := h.ParseTimeQuery(c, "from"); !ok {
		return
	} else if v != nil {
		from = *v
	}
	if v, ok := h.ParseTimeQuery(c, "to"); !ok {
		return
	} else if v != nil {
		to = *v
	}

	total, err := h.service.TotalCost(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LossTotalResponse{TotalCost: total})
}
