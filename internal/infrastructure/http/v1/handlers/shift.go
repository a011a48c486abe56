package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/apperror"
	appctx "tillage/internal/core/context"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/shift"
	"tillage/internal/infrastructure/http/v1/dto"
)

// ShiftHandler handles cashier shift endpoints.
type ShiftHandler struct {
	*BaseHandler
	service *shift.Service
}

// NewShiftHandler creates a shift handler.
func NewShiftHandler(base *BaseHandler, service *shift.Service) *ShiftHandler {
	return &ShiftHandler{BaseHandler: base, service: service}
}

// Open handles POST /shifts/open - start a working session.
func (h *ShiftHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.OpenShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.StartingCash.IsNegative() {
		req.StartingCash = types.Zero()
	}

	sh, err := h.service.Open(ctx, cashierID, req.StartingCash)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromShift(sh)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Close handles POST /shifts/close - end the session and return the
// reconciliation summary.
func (h *ShiftHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CloseShiftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	summary, err := h.service.Close(ctx, cashierID, req.EndingCash)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CompleteIdempotency(c, http.StatusOK, "application/json", summary)
	c.JSON(http.StatusOK, summary)
}

// Current handles GET /shifts/current - the caller's open shift.
func (h *ShiftHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()

	cashierID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	sh, err := h.service.Current(ctx, cashierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromShift(sh))
}

// History handles GET /shifts - recent shifts. Employees see their own;
// managers can pass cashierId to inspect anyone's.
func (h *ShiftHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	var cashierID *id.ID
	if qID := c.Query("cashierId"); qID != "" {
		if !appctx.IsManager(ctx) {
			h.Error(c, apperror.NewForbidden("manager position required to view other cashiers"))
			return
		}
		parsed, err := id.Parse(qID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cashierId format"))
			return
		}
		cashierID = &parsed
	} else if !appctx.IsManager(ctx) {
		own, ok := h.CurrentUserID(c)
		if !ok {
			return
		}
		cashierID = &own
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	shifts, err := h.service.History(ctx, cashierID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ShiftResponse, len(shifts))
	for i, s := range shifts {
		items[i] = dto.FromShift(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
