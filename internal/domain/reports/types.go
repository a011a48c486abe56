// Package reports provides sales and inventory analytics.
package reports

import (
	"time"

	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

// --- Sales Summary ---

// SalesSummaryFilter defines the reporting window.
type SalesSummaryFilter struct {
	// FromDate / ToDate bound the period (defaults: start of today / now)
	FromDate *time.Time
	ToDate   *time.Time

	// CashierID narrows to one cashier
	CashierID *id.ID
}

// SalesSummary aggregates transactions over a period.
type SalesSummary struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`

	SalesCount  int         `json:"salesCount"`
	RefundCount int         `json:"refundCount"`
	TotalSales  types.Money `json:"totalSales"`
	TotalProfit types.Money `json:"totalProfit"`
	RefundTotal types.Money `json:"refundTotal"`

	CashTotal types.Money `json:"cashTotal"`
	CardTotal types.Money `json:"cardTotal"`
}

// DailySales is one day's bucket in a breakdown.
type DailySales struct {
	Day         time.Time   `json:"day"`
	SalesCount  int         `json:"salesCount"`
	TotalSales  types.Money `json:"totalSales"`
	TotalProfit types.Money `json:"totalProfit"`
}

// WeeklyBreakdown is the trailing week, one bucket per day.
type WeeklyBreakdown struct {
	FromDate time.Time    `json:"fromDate"`
	ToDate   time.Time    `json:"toDate"`
	Days     []DailySales `json:"days"`
}

// --- Product Performance ---

// ProductSales ranks a product by revenue over a period.
type ProductSales struct {
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName"`
	QuantitySold types.Quantity `json:"quantitySold"`
	Revenue      types.Money    `json:"revenue"`
	Profit       types.Money    `json:"profit"`
}

// --- Dashboard ---

// Dashboard is the one-call overview for the store front page.
type Dashboard struct {
	GeneratedAt time.Time `json:"generatedAt"`

	TodaySales  types.Money `json:"todaySales"`
	TodayProfit types.Money `json:"todayProfit"`
	TodayCount  int         `json:"todayCount"`

	LowStockCount      int         `json:"lowStockCount"`
	ExpiringSoonCount  int         `json:"expiringSoonCount"`
	TotalStockValue    types.Money `json:"totalStockValue"`
	OpenShiftCount     int         `json:"openShiftCount"`
	LossesThisWeek     types.Money `json:"lossesThisWeek"`
	ActiveProductCount int         `json:"activeProductCount"`
}
