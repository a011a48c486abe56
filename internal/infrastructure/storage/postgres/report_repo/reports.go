// Package report_repo provides PostgreSQL implementations for the
// sales and inventory analytics queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tillage/internal/domain/reports"
	"tillage/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// GetSalesSummary aggregates transactions in the window.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, filter reports.SalesSummaryFilter) (*reports.SalesSummary, error) {
	query := `
		SELECT
			COALESCE(COUNT(*) FILTER (WHERE NOT is_refund), 0) AS sales_count,
			COALESCE(COUNT(*) FILTER (WHERE is_refund), 0) AS refund_count,
			COALESCE(SUM(total_amount) FILTER (WHERE NOT is_refund), 0) AS total_sales,
			COALESCE(SUM(total_profit), 0) AS total_profit,
			COALESCE(SUM(-total_amount) FILTER (WHERE is_refund), 0) AS refund_total,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_method = 'cash'), 0) AS cash_total,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_method = 'card'), 0) AS card_total
		FROM sales_transactions
		WHERE created_at >= $1 AND created_at <= $2
	`
	args := []any{*filter.FromDate, *filter.ToDate}

	if filter.CashierID != nil {
		query += " AND cashier_id = $3"
		args = append(args, *filter.CashierID)
	}

	var summary reports.SalesSummary
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	summary.FromDate = *filter.FromDate
	summary.ToDate = *filter.ToDate
	return &summary, nil
}

// GetDailySales buckets sales per day over [from, to]. Days without
// transactions come back as zero rows so charts have no gaps.
func (r *ReportRepo) GetDailySales(ctx context.Context, from, to time.Time) ([]reports.DailySales, error) {
	query := `
		SELECT
			d.day,
			COALESCE(COUNT(t.id) FILTER (WHERE NOT t.is_refund), 0) AS sales_count,
			COALESCE(SUM(t.total_amount) FILTER (WHERE NOT t.is_refund), 0) AS total_sales,
			COALESCE(SUM(t.total_profit), 0) AS total_profit
		FROM generate_series(
			date_trunc('day', $1::timestamptz),
			date_trunc('day', $2::timestamptz),
			'1 day'
		) AS d(day)
		LEFT JOIN sales_transactions t
			ON date_trunc('day', t.created_at) = d.day
			AND t.created_at >= $1 AND t.created_at <= $2
		GROUP BY d.day
		ORDER BY d.day ASC
	`

	var days []reports.DailySales
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &days, query, from, to); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return days, nil
}

// GetTopProducts ranks products by revenue over [from, to]. Refund
// items carry negative quantities and subtract naturally.
func (r *ReportRepo) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductSales, error) {
	query := `
		SELECT
			p.id AS product_id,
			p.name AS product_name,
			COALESCE(SUM(i.quantity), 0)::bigint AS quantity_sold,
			COALESCE(SUM((i.quantity / 10000.0) * i.unit_price), 0) AS revenue,
			COALESCE(SUM(i.profit), 0) AS profit
		FROM sales_items i
		JOIN sales_transactions t ON t.id = i.transaction_id
		JOIN cat_products p ON p.id = i.product_id
		WHERE t.created_at >= $1 AND t.created_at <= $2
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT $3
	`

	var items []reports.ProductSales
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return items, nil
}

// GetDashboard collects the front-page counters in one round trip.
func (r *ReportRepo) GetDashboard(ctx context.Context) (*reports.Dashboard, error) {
	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	expiryHorizon := now.AddDate(0, 0, 7)

	query := `
		SELECT
			COALESCE((SELECT SUM(total_amount) FROM sales_transactions
				WHERE NOT is_refund AND created_at >= $1), 0) AS today_sales,
			COALESCE((SELECT SUM(total_profit) FROM sales_transactions
				WHERE created_at >= $1), 0) AS today_profit,
			COALESCE((SELECT COUNT(*) FROM sales_transactions
				WHERE NOT is_refund AND created_at >= $1), 0) AS today_count,
			COALESCE((SELECT COUNT(*) FROM (
				SELECT p.id
				FROM cat_products p
				LEFT JOIN inv_batches b ON b.product_id = p.id
				WHERE p.is_active AND NOT p.deletion_mark
				GROUP BY p.id, p.low_stock_level
				HAVING COALESCE(SUM(b.quantity), 0) <= p.low_stock_level
			) low), 0) AS low_stock_count,
			COALESCE((SELECT COUNT(*) FROM inv_batches b
				JOIN cat_products p ON p.id = b.product_id
				WHERE b.quantity > 0 AND NOT b.expired_handled
				  AND b.expiry_date IS NOT NULL AND b.expiry_date <= $2
				  AND p.is_active), 0) AS expiring_soon_count,
			COALESCE((SELECT SUM((b.quantity / 10000.0) * p.cost_price)
				FROM inv_batches b
				JOIN cat_products p ON p.id = b.product_id
				WHERE b.quantity > 0 AND p.is_active), 0) AS total_stock_value,
			COALESCE((SELECT COUNT(*) FROM cashier_shifts
				WHERE NOT is_closed), 0) AS open_shift_count,
			COALESCE((SELECT SUM(cost_value) FROM inv_loss_records
				WHERE created_at >= $3), 0) AS losses_this_week,
			COALESCE((SELECT COUNT(*) FROM cat_products
				WHERE is_active AND NOT deletion_mark), 0) AS active_product_count
	`

	var d reports.Dashboard
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, query, todayStart, expiryHorizon, weekAgo); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
