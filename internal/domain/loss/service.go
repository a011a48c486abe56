package loss

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/id"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/internal/domain/inventory"
)

// Repository persists loss records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	List(ctx context.Context, f ListFilter) ([]*Record, error)
	TotalCost(ctx context.Context, from, to time.Time) (types.Money, error)
}

// ListFilter narrows loss listings.
type ListFilter struct {
	ProductID *id.ID
	Reason    *Reason
	From      *time.Time
	To        *time.Time
	Limit     int
}

// Ledger is the slice of the inventory service the recorder needs.
type Ledger interface {
	GetBatchForUpdate(ctx context.Context, batchID id.ID) (*inventory.Batch, error)
	Deduct(ctx context.Context, batch *inventory.Batch, qty types.Quantity, productName string) error
}

// ProductResolver resolves product name and cost for the record.
type ProductResolver interface {
	GetByID(ctx context.Context, productID id.ID) (*ProductInfo, error)
}

// ProductInfo is the minimal product view the recorder needs.
type ProductInfo struct {
	ID        id.ID
	Name      string
	CostPrice types.Money
	IsActive  bool
}

// Service records write-offs. Each write-off deducts from exactly one
// batch and stores the cost value at that moment.
type Service struct {
	repo      Repository
	ledger    Ledger
	products  ProductResolver
	txManager tx.Manager
}

// NewService creates the loss recorder.
func NewService(repo Repository, ledger Ledger, products ProductResolver, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		products:  products,
		txManager: txManager,
	}
}

// RecordLoss writes off qty from the given batch for the given reason.
// The deduction and the record are committed atomically; any guard
// failure leaves nothing persisted. The product must be active, and a
// batch sitting past expiry goes through MarkExpiredHandled before a
// loss can be recorded against it.
func (s *Service) RecordLoss(ctx context.Context, batchID id.ID, qty types.Quantity, reason Reason, note string) (*Record, error) {
	rec := &Record{
		BaseDocument: entity.NewBaseDocument(),
		BatchID:      batchID,
		Quantity:     qty,
		Reason:       reason,
		Note:         note,
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.ledger.GetBatchForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		rec.ProductID = batch.ProductID

		p, err := s.products.GetByID(ctx, batch.ProductID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return apperror.NewValidation("cannot record loss for inactive product").
				WithDetail("product", p.Name)
		}
		if batch.IsExpired(time.Now().UTC()) && !batch.ExpiredHandled {
			return apperror.NewValidation("batch is past expiry and not yet handled").
				WithDetail("batchId", batchID.String())
		}

		if err := rec.Validate(ctx); err != nil {
			return err
		}

		if err := s.ledger.Deduct(ctx, batch, qty, p.Name); err != nil {
			return err
		}

		rec.CostValue = types.RoundMoney(p.CostPrice.Mul(qty.Decimal()))
		return s.repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns loss records matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Record, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	return s.repo.List(ctx, f)
}

// TotalCost sums the cost value of losses in a period.
func (s *Service) TotalCost(ctx context.Context, from, to time.Time) (types.Money, error) {
	v, err := s.repo.TotalCost(ctx, from, to)
	if err != nil {
		return types.Zero(), err
	}
	return types.RoundMoney(v), nil
}
