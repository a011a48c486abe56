// Package product provides the sellable goods catalog.
package product

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// Product is a sellable item. Prices here are per unit; batch-level
// promotional discounts can lower the effective price at sale time.
type Product struct {
	entity.Catalog

	// CategoryID references the category catalog (nullable)
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// HasBarcode distinguishes scannable goods from weighed/manual ones
	HasBarcode bool `db:"has_barcode" json:"hasBarcode"`

	// Barcode is the EAN/UPC digits, unique among active products
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// PriceByWeight means quantity is fractional (kg) instead of pieces
	PriceByWeight bool `db:"price_by_weight" json:"priceByWeight"`

	// CostPrice is the purchase price per unit
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// SellingPrice is the regular retail price per unit
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// LowStockLevel is the reorder threshold for alerts
	LowStockLevel types.Quantity `db:"low_stock_level" json:"lowStockLevel"`

	// IsActive gates visibility at the register; inactive products
	// keep history but cannot be sold or restocked
	IsActive bool `db:"is_active" json:"isActive"`
}

// New creates a product with generated ID and defaults.
func New(code, name string) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").
			WithDetail("field", "sellingPrice")
	}
	if p.SellingPrice.LessThan(p.CostPrice) {
		return apperror.NewValidation("selling price cannot be below cost price").
			WithDetail("costPrice", p.CostPrice.String()).
			WithDetail("sellingPrice", p.SellingPrice.String())
	}
	if p.LowStockLevel.IsNegative() {
		return apperror.NewValidation("low stock level cannot be negative").
			WithDetail("field", "lowStockLevel")
	}

	if p.HasBarcode {
		if p.Barcode == nil || !ValidBarcode(*p.Barcode) {
			return apperror.NewValidation("barcode must be 8 to 13 digits").
				WithDetail("field", "barcode")
		}
	} else if p.Barcode != nil {
		return apperror.NewValidation("barcode set on product without barcode flag").
			WithDetail("field", "barcode")
	}

	return nil
}

// ValidBarcode reports whether s looks like an EAN/UPC code (8-13 digits).
func ValidBarcode(s string) bool {
	if len(s) < 8 || len(s) > 13 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Margin returns the per-unit profit at the regular price.
func (p *Product) Margin() types.Money {
	return p.SellingPrice.Sub(p.CostPrice)
}

// StockLevel is a read model for inventory dashboards: product joined
// with its summed batch quantity.
type StockLevel struct {
	ProductID     id.ID          `db:"product_id" json:"productId"`
	Code          string         `db:"code" json:"code"`
	Name          string         `db:"name" json:"name"`
	OnHand        types.Quantity `db:"on_hand" json:"onHand"`
	LowStockLevel types.Quantity `db:"low_stock_level" json:"lowStockLevel"`
}

// ExpiringStock is a read model for batches near their expiry date.
type ExpiringStock struct {
	ProductID  id.ID          `db:"product_id" json:"productId"`
	Name       string         `db:"name" json:"name"`
	BatchID    id.ID          `db:"batch_id" json:"batchId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	ExpiryDate time.Time      `db:"expiry_date" json:"expiryDate"`
}
