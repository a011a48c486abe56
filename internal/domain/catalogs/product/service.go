package product

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/internal/domain"
)

// Service wraps the generic catalog service with barcode uniqueness
// and stock-oriented queries.
type Service struct {
	*domain.CatalogService[*Product]

	repo Repository
}

// NewService creates the product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "product",
		}),
		repo: repo,
	}

	s.Hooks().OnBeforeCreate(s.checkBarcodeUnique)
	return s
}

func (s *Service) checkBarcodeUnique(ctx context.Context, p *Product) error {
	if !p.HasBarcode || p.Barcode == nil {
		return nil
	}
	exists, err := s.repo.ExistsByBarcode(ctx, *p.Barcode)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product", "barcode", *p.Barcode)
	}
	return nil
}

// GetByBarcode returns the active product carrying the barcode.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if !ValidBarcode(barcode) {
		return nil, apperror.NewValidation("barcode must be 8 to 13 digits").
			WithDetail("barcode", barcode)
	}
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return p, nil
}

// LowStock lists products at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]*StockLevel, error) {
	return s.repo.LowStock(ctx)
}

// ExpiringSoon lists batches expiring within the given number of days.
func (s *Service) ExpiringSoon(ctx context.Context, days int) ([]*ExpiringStock, error) {
	if days <= 0 {
		days = 7
	}
	until := time.Now().UTC().AddDate(0, 0, days)
	return s.repo.ExpiringSoon(ctx, until)
}

// TotalStockValue returns the cost valuation of everything on hand.
func (s *Service) TotalStockValue(ctx context.Context) (types.Money, error) {
	v, err := s.repo.TotalStockValue(ctx)
	if err != nil {
		return types.Zero(), err
	}
	return types.RoundMoney(v), nil
}
