package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tillage/internal/core/apperror"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
	"tillage/internal/infrastructure/storage/postgres"
)

const (
	productTable = "cat_products"
	batchTable   = "inv_batches"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByBarcode retrieves an active product by barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return p, nil
}

// ExistsByBarcode checks barcode uniqueness among active products.
func (r *ProductRepo) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(productTable).
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by barcode: %w", err)
	}
	return true, nil
}

// LowStock lists active products whose on-hand quantity is at or below
// their low stock level. Products without batches count as zero on hand.
func (r *ProductRepo) LowStock(ctx context.Context) ([]*product.StockLevel, error) {
	q := r.Builder().
		Select(
			"p.id AS product_id",
			"p.code",
			"p.name",
			"COALESCE(SUM(b.quantity), 0)::bigint AS on_hand",
			"p.low_stock_level",
		).
		From(productTable + " p").
		LeftJoin(batchTable + " b ON b.product_id = p.id").
		Where(squirrel.Eq{"p.is_active": true}).
		Where(squirrel.Eq{"p.deletion_mark": false}).
		GroupBy("p.id", "p.code", "p.name", "p.low_stock_level").
		Having("COALESCE(SUM(b.quantity), 0) <= p.low_stock_level").
		OrderBy("p.name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.StockLevel
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}

// ExpiringSoon lists non-empty batches whose expiry date falls on or
// before the horizon.
func (r *ProductRepo) ExpiringSoon(ctx context.Context, until time.Time) ([]*product.ExpiringStock, error) {
	q := r.Builder().
		Select(
			"p.id AS product_id",
			"p.name",
			"b.id AS batch_id",
			"b.quantity",
			"b.expiry_date",
		).
		From(batchTable + " b").
		Join(productTable + " p ON p.id = b.product_id").
		Where(squirrel.Gt{"b.quantity": 0}).
		Where(squirrel.NotEq{"b.expiry_date": nil}).
		Where(squirrel.LtOrEq{"b.expiry_date": until}).
		Where(squirrel.Eq{"b.expired_handled": false}).
		Where(squirrel.Eq{"p.is_active": true}).
		OrderBy("b.expiry_date ASC", "p.name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.ExpiringStock
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("expiring soon: %w", err)
	}
	return items, nil
}

// TotalStockValue sums on-hand quantity times cost price over batches
// of active products. Batch quantity is stored scaled by 10000.
func (r *ProductRepo) TotalStockValue(ctx context.Context) (types.Money, error) {
	q := r.Builder().
		Select("COALESCE(SUM((b.quantity / 10000.0) * p.cost_price), 0)").
		From(batchTable + " b").
		Join(productTable + " p ON p.id = b.product_id").
		Where(squirrel.Gt{"b.quantity": 0}).
		Where(squirrel.Eq{"p.is_active": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}
