package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides analytics over committed sales.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSalesSummary aggregates transactions for the requested window.
// Defaults to today when no window is given.
func (s *Service) GetSalesSummary(ctx context.Context, filter SalesSummaryFilter) (*SalesSummary, error) {
	now := time.Now().UTC()
	if filter.ToDate == nil {
		filter.ToDate = &now
	}
	if filter.FromDate == nil {
		start := startOfDay(now)
		filter.FromDate = &start
	}
	if filter.FromDate.After(*filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	summary, err := s.repo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary: %w", err)
	}
	return summary, nil
}

// GetWeeklyBreakdown returns the trailing 7 days bucketed per day.
func (s *Service) GetWeeklyBreakdown(ctx context.Context) (*WeeklyBreakdown, error) {
	now := time.Now().UTC()
	from := startOfDay(now.AddDate(0, 0, -6))

	days, err := s.repo.GetDailySales(ctx, from, now)
	if err != nil {
		return nil, fmt.Errorf("get daily sales: %w", err)
	}
	return &WeeklyBreakdown{
		FromDate: from,
		ToDate:   now,
		Days:     days,
	}, nil
}

// GetTopProducts ranks products by revenue over the window.
func (s *Service) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if from.IsZero() {
		from = startOfDay(time.Now().UTC().AddDate(0, 0, -30))
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	return s.repo.GetTopProducts(ctx, from, to, limit)
}

// GetDashboard returns the front-page overview.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	d, err := s.repo.GetDashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	d.GeneratedAt = time.Now().UTC()
	return d, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
