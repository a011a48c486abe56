package reports

import (
	"context"
	"time"
)

// Repository runs the aggregate queries behind the reports.
type Repository interface {
	// GetSalesSummary aggregates transactions in the window.
	GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error)

	// GetDailySales buckets sales per day over [from, to].
	GetDailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)

	// GetTopProducts ranks products by revenue over [from, to].
	GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)

	// GetDashboard collects the front-page counters in one round trip.
	GetDashboard(ctx context.Context) (*Dashboard, error)
}
