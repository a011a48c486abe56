package dto

import (
	"time"

	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
)

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	CatalogResponse
	CategoryID    *string        `json:"categoryId,omitempty"`
	HasBarcode    bool           `json:"hasBarcode"`
	Barcode       *string        `json:"barcode,omitempty"`
	PriceByWeight bool           `json:"priceByWeight"`
	CostPrice     types.Money    `json:"costPrice"`
	SellingPrice  types.Money    `json:"sellingPrice"`
	LowStockLevel types.Quantity `json:"lowStockLevel"`
	IsActive      bool           `json:"isActive"`
}

// FromProduct creates ProductResponse from domain entity.
func FromProduct(p *product.Product) ProductResponse {
	resp := ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		HasBarcode:      p.HasBarcode,
		Barcode:         p.Barcode,
		PriceByWeight:   p.PriceByWeight,
		CostPrice:       p.CostPrice,
		SellingPrice:    p.SellingPrice,
		LowStockLevel:   p.LowStockLevel,
		IsActive:        p.IsActive,
	}
	if p.CategoryID != nil {
		s := p.CategoryID.String()
		resp.CategoryID = &s
	}
	return resp
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	CreateCatalogRequest
	CategoryID    *string        `json:"categoryId"`
	HasBarcode    bool           `json:"hasBarcode"`
	Barcode       *string        `json:"barcode"`
	PriceByWeight bool           `json:"priceByWeight"`
	CostPrice     types.Money    `json:"costPrice"`
	SellingPrice  types.Money    `json:"sellingPrice"`
	LowStockLevel types.Quantity `json:"lowStockLevel"`
}

// ToEntity converts request to domain entity.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	p := product.New(r.Code, r.Name)
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	if r.Attributes != nil {
		p.Attributes = r.Attributes
	}
	p.HasBarcode = r.HasBarcode
	p.Barcode = r.Barcode
	p.PriceByWeight = r.PriceByWeight
	p.CostPrice = r.CostPrice
	p.SellingPrice = r.SellingPrice
	p.LowStockLevel = r.LowStockLevel

	if r.CategoryID != nil && *r.CategoryID != "" {
		categoryID, err := id.Parse(*r.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &categoryID
	}
	return p, nil
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	UpdateCatalogRequest
	CategoryID    *string         `json:"categoryId"`
	HasBarcode    *bool           `json:"hasBarcode"`
	Barcode       *string         `json:"barcode"`
	PriceByWeight *bool           `json:"priceByWeight"`
	CostPrice     *types.Money    `json:"costPrice"`
	SellingPrice  *types.Money    `json:"sellingPrice"`
	LowStockLevel *types.Quantity `json:"lowStockLevel"`
	IsActive      *bool           `json:"isActive"`
}

// ApplyTo maps the update onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) (*product.Product, error) {
	r.ApplyToCatalog(&p.Catalog)

	if r.CategoryID != nil {
		if *r.CategoryID == "" {
			p.CategoryID = nil
		} else {
			categoryID, err := id.Parse(*r.CategoryID)
			if err != nil {
				return nil, err
			}
			p.CategoryID = &categoryID
		}
	}
	if r.HasBarcode != nil {
		p.HasBarcode = *r.HasBarcode
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.PriceByWeight != nil {
		p.PriceByWeight = *r.PriceByWeight
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	if r.SellingPrice != nil {
		p.SellingPrice = *r.SellingPrice
	}
	if r.LowStockLevel != nil {
		p.LowStockLevel = *r.LowStockLevel
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p, nil
}

// StockLevelResponse is one low-stock alert row.
type StockLevelResponse struct {
	ProductID     string         `json:"productId"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	OnHand        types.Quantity `json:"onHand"`
	LowStockLevel types.Quantity `json:"lowStockLevel"`
}

// FromStockLevel creates StockLevelResponse from the read model.
func FromStockLevel(s *product.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:     s.ProductID.String(),
		Code:          s.Code,
		Name:          s.Name,
		OnHand:        s.OnHand,
		LowStockLevel: s.LowStockLevel,
	}
}

// ExpiringStockResponse is one near-expiry batch row.
type ExpiringStockResponse struct {
	ProductID  string         `json:"productId"`
	Name       string         `json:"name"`
	BatchID    string         `json:"batchId"`
	Quantity   types.Quantity `json:"quantity"`
	ExpiryDate time.Time      `json:"expiryDate"`
}

// FromExpiringStock creates ExpiringStockResponse from the read model.
func FromExpiringStock(e *product.ExpiringStock) ExpiringStockResponse {
	return ExpiringStockResponse{
		ProductID:  e.ProductID.String(),
		Name:       e.Name,
		BatchID:    e.BatchID.String(),
		Quantity:   e.Quantity,
		ExpiryDate: e.ExpiryDate,
	}
}

// StockValueResponse reports the cost valuation of everything on hand.
type StockValueResponse struct {
	TotalValue types.Money `json:"totalValue"`
}
