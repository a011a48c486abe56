package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillage/internal/domain/loyalty"
	"tillage/internal/infrastructure/http/v1/dto"
)

// LoyaltyHandler handles discount code endpoints.
type LoyaltyHandler struct {
	*BaseHandler
	service *loyalty.Service
}

// NewLoyaltyHandler creates a loyalty handler.
func NewLoyaltyHandler(base *BaseHandler, service *loyalty.Service) *LoyaltyHandler {
	return &LoyaltyHandler{BaseHandler: base, service: service}
}

// ValidateCode handles GET /loyalty/codes/:code/validate - the
// read-only register check. Takes no locks, consumes nothing.
func (h *LoyaltyHandler) ValidateCode(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	valid, err := h.service.Validate(ctx, code)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ValidateCodeResponse{
		Code:  code,
		Valid: valid,
	}
	if valid {
		resp.DiscountPercent = h.service.DiscountPercent(ctx)
	}
	c.JSON(http.StatusOK, resp)
}

// MintStaffCode handles POST /loyalty/codes - issue a staff voucher.
func (h *LoyaltyHandler) MintStaffCode(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MintStaffCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	dc, err := h.service.MintStaffCode(ctx, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromDiscountCode(dc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}
