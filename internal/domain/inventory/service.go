package inventory

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
	"tillage/pkg/logger"
)

// ProductResolver is the slice of the product service the ledger needs.
type ProductResolver interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// Service is the stock ledger. All quantity mutations in the system
// go through Deduct and Restore so the batch invariants hold in one place.
type Service struct {
	repo      Repository
	products  ProductResolver
	txManager tx.Manager
}

// NewService creates the inventory ledger service.
func NewService(repo Repository, products ProductResolver, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

// CreateBatch receives a delivery: validates the product, inserts the
// batch and writes a restock log in one transaction.
func (s *Service) CreateBatch(ctx context.Context, batch *Batch, supplier, note string) error {
	if err := batch.Validate(ctx); err != nil {
		return err
	}
	if !batch.Quantity.IsPositive() {
		return apperror.NewValidation("received quantity must be positive").
			WithDetail("field", "quantity")
	}

	p, err := s.products.GetByID(ctx, batch.ProductID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return apperror.NewValidation("cannot restock inactive product").
			WithDetail("product", p.Name)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, batch); err != nil {
			return err
		}
		log := &RestockLog{
			ProductID: batch.ProductID,
			BatchID:   batch.ID,
			Quantity:  batch.Quantity,
			Supplier:  supplier,
			Note:      note,
		}
		log.ID = id.New()
		now := time.Now().UTC()
		log.CreatedAt = now
		log.UpdatedAt = now
		log.Version = 1
		return s.repo.CreateRestockLog(ctx, log)
	})
}

// AvailableBatches returns locked FIFO batches. Must run inside a transaction.
func (s *Service) AvailableBatches(ctx context.Context, productID id.ID) ([]*Batch, error) {
	return s.repo.AvailableForUpdate(ctx, productID)
}

// GetBatchForUpdate returns a single locked batch. Must run inside a transaction.
func (s *Service) GetBatchForUpdate(ctx context.Context, batchID id.ID) (*Batch, error) {
	return s.repo.GetForUpdate(ctx, batchID)
}

// LatestBatch returns the locked most recent batch for refunds.
// Must run inside a transaction.
func (s *Service) LatestBatch(ctx context.Context, productID id.ID) (*Batch, error) {
	return s.repo.LatestForUpdate(ctx, productID)
}

// Deduct removes qty from a locked batch. The caller passes the product
// name purely for the error payload. A batch drained to zero is marked
// handled regardless of its date, so it never raises an expiry alert
// after the date passes with nothing left to deal with.
func (s *Service) Deduct(ctx context.Context, batch *Batch, qty types.Quantity, productName string) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("deduct quantity must be positive").
			WithDetail("quantity", qty.String())
	}
	if qty > batch.Quantity {
		return apperror.NewInsufficientStock(productName, qty.Float64(), batch.Quantity.Float64())
	}

	batch.Quantity -= qty
	if batch.Quantity.IsZero() {
		batch.ExpiredHandled = true
	}
	return s.repo.Update(ctx, batch)
}

// Restore puts qty back into a locked batch. Unbounded: a refund may
// push the batch above its original received quantity, which is accepted
// (the received amount is recorded in the restock log, not the batch).
func (s *Service) Restore(ctx context.Context, batch *Batch, qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("restore quantity must be positive").
			WithDetail("quantity", qty.String())
	}
	batch.Quantity += qty
	return s.repo.Update(ctx, batch)
}

// TotalOnHand sums remaining stock over all batches of a product.
func (s *Service) TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return s.repo.TotalOnHand(ctx, productID)
}

// ListByProduct returns batch history for a product card.
func (s *Service) ListByProduct(ctx context.Context, productID id.ID) ([]*Batch, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// RestockHistory returns recent deliveries for a product.
func (s *Service) RestockHistory(ctx context.Context, productID id.ID, limit int) ([]*RestockLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListRestockLogs(ctx, productID, limit)
}

// MarkExpiredHandled flags a past-expiry batch as dealt with.
func (s *Service) MarkExpiredHandled(ctx context.Context, batchID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch, err := s.repo.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if !batch.IsExpired(time.Now().UTC()) {
			return apperror.NewValidation("batch is not expired").
				WithDetail("batchId", batchID.String())
		}
		if batch.ExpiredHandled {
			logger.Debug(ctx, "expired batch already handled", "batch_id", batchID.String())
			return nil
		}
		batch.ExpiredHandled = true
		return s.repo.Update(ctx, batch)
	})
}
