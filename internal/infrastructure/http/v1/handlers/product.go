package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillage/internal/domain/catalogs/product"
	"tillage/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints plus the
// stock-oriented read models.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:    service.CatalogService,
			EntityName: "product",
			MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
				return req.ToEntity()
			},
			MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) (*product.Product, error) {
				return req.ApplyTo(existing)
			},
			MapToDTO: func(p *product.Product) any {
				return dto.FromProduct(p)
			},
		}),
		service: service,
	}
}

// GetByBarcode handles GET /products/barcode/:barcode - register lookup.
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.GetByBarcode(ctx, c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(p))
}

// LowStock handles GET /products/low-stock - reorder alerts.
func (h *ProductHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	levels, err := h.service.LowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockLevelResponse, len(levels))
	for i, s := range levels {
		items[i] = dto.FromStockLevel(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ExpiringSoon handles GET /products/expiring?days=N - near-expiry batches.
func (h *ProductHandler) ExpiringSoon(c *gin.Context) {
	ctx := c.Request.Context()

	days := h.ParseIntQuery(c, "days", 7)
	batches, err := h.service.ExpiringSoon(ctx, days)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ExpiringStockResponse, len(batches))
	for i, b := range batches {
		items[i] = dto.FromExpiringStock(b)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// StockValue handles GET /products/stock-value - cost valuation of stock.
func (h *ProductHandler) StockValue(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.service.TotalStockValue(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockValueResponse{TotalValue: total})
}
