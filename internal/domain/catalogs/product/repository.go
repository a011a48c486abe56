package product

import (
	"context"
	"time"

	"tillage/internal/core/types"
	"tillage/internal/domain"
)

// Repository extends the generic catalog repository with
// register-facing and inventory-facing lookups.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetByBarcode returns an active product by its barcode.
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// ExistsByBarcode checks barcode uniqueness among active products.
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)

	// LowStock lists active products whose on-hand quantity is at or
	// below their low stock level.
	LowStock(ctx context.Context) ([]*StockLevel, error)

	// ExpiringSoon lists non-empty batches expiring within the horizon.
	ExpiringSoon(ctx context.Context, until time.Time) ([]*ExpiringStock, error)

	// TotalStockValue sums quantity * cost price over all batches
	// of active products.
	TotalStockValue(ctx context.Context) (types.Money, error)
}
