package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/domain/reports"
)

// ReportsHandler handles analytics endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// SalesSummary handles GET /reports/sales-summary. Defaults to today.
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var filter reports.SalesSummaryFilter

	if from, ok := h.ParseTimeQuery(c, "from"); !ok {
		return
	} else if from != nil {
		filter.FromDate = from
	}
	if to, ok := h.ParseTimeQuery(c, "to"); !ok {
		return
	} else if to != nil {
		filter.ToDate = to
	}
	if cashierID := c.Query("cashierId"); cashierID != "" {
		parsed, err := id.Parse(cashierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cashierId format"))
			return
		}
		filter.CashierID = &parsed
	}

	summary, err := h.service.GetSalesSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// WeeklyBreakdown handles GET /reports/weekly - trailing 7 days.
func (h *ReportsHandler) WeeklyBreakdown(c *gin.Context) {
	ctx := c.Request.Context()

	breakdown, err := h.service.GetWeeklyBreakdown(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// TopProducts handles GET /reports/top-products?from=...&to=...&limit=N.
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var from, to time.Time
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
	limit := h.ParseIntQuery(c, "limit", 10)

	items, err := h.service.GetTopProducts(ctx, from, to, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Dashboard handles GET /reports/dashboard - the front-page overview.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.service.GetDashboard(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
