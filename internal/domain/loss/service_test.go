package loss

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/inventory"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLedger struct {
	batch *inventory.Batch
}

func (f *fakeLedger) GetBatchForUpdate(ctx context.Context, batchID id.ID) (*inventory.Batch, error) {
	if f.batch == nil || f.batch.ID != batchID {
		return nil, apperror.NewNotFound("batch", batchID.String())
	}
	return f.batch, nil
}

func (f *fakeLedger) Deduct(ctx context.Context, batch *inventory.Batch, qty types.Quantity, name string) error {
	if qty > batch.Quantity {
		return apperror.NewInsufficientStock(name, qty.Float64(), batch.Quantity.Float64())
	}
	batch.Quantity -= qty
	return nil
}

type fakeProducts struct {
	info *ProductInfo
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*ProductInfo, error) {
	return f.info, nil
}

type fakeLossRepo struct {
	records []*Record
}

func (r *fakeLossRepo) Create(ctx context.Context, rec *Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeLossRepo) List(ctx context.Context, f ListFilter) ([]*Record, error) {
	return r.records, nil
}

func (r *fakeLossRepo) TotalCost(ctx context.Context, from, to time.Time) (types.Money, error) {
	total := types.Zero()
	for _, rec := range r.records {
		total = total.Add(rec.CostValue)
	}
	return total, nil
}

func setup(t *testing.T) (*Service, *fakeLossRepo, *inventory.Batch) {
	svc, repo, batch, _ := setupWithProduct(t)
	return svc, repo, batch
}

func setupWithProduct(t *testing.T) (*Service, *fakeLossRepo, *inventory.Batch, *ProductInfo) {
	t.Helper()
	productID := id.New()
	batch := inventory.NewBatch(productID, types.NewQuantityFromInt(10))
	info := &ProductInfo{ID: productID, Name: "Milk", CostPrice: types.MustMoney("60"), IsActive: true}

	repo := &fakeLossRepo{}
	svc := NewService(
		repo,
		&fakeLedger{batch: batch},
		&fakeProducts{info: info},
		nopTxManager{},
	)
	return svc, repo, batch, info
}

func TestRecordLoss(t *testing.T) {
	ctx := context.Background()
	svc, repo, batch := setup(t)

	rec, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(3), ReasonDamaged, "dropped pallet")
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromInt(7), batch.Quantity)
	assert.Equal(t, batch.ProductID, rec.ProductID)
	assert.True(t, rec.CostValue.Equal(types.MustMoney("180")), "cost value = 3 * 60")
	require.Len(t, repo.records, 1)
}

func TestRecordLossOverAvailable(t *testing.T) {
	ctx := context.Background()
	svc, repo, batch := setup(t)

	_, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(11), ReasonExpired, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Empty(t, repo.records)
}

func TestRecordLossValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, batch := setup(t)

	_, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(0), ReasonOther, "")
	require.Error(t, err)

	_, err = svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(1), Reason("vanished"), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRecordLossInactiveProduct(t *testing.T) {
	ctx := context.Background()
	svc, repo, batch, info := setupWithProduct(t)
	info.IsActive = false

	_, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(2), ReasonDamaged, "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, types.NewQuantityFromInt(10), batch.Quantity, "guard must fire before any deduction")
	assert.Empty(t, repo.records)
}

func TestRecordLossExpiredUnhandledBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo, batch := setup(t)
	past := time.Now().UTC().Add(-24 * time.Hour)
	batch.ExpiryDate = &past

	_, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(2), ReasonExpired, "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, types.NewQuantityFromInt(10), batch.Quantity)
	assert.Empty(t, repo.records)

	// Once the batch goes through the expiry workflow the loss records.
	batch.ExpiredHandled = true
	rec, err := svc.RecordLoss(ctx, batch.ID, types.NewQuantityFromInt(2), ReasonExpired, "")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(8), batch.Quantity)
	assert.True(t, rec.CostValue.Equal(types.MustMoney("120")))
}

func TestValidReason(t *testing.T) {
	assert.True(t, ValidReason(ReasonExpired))
	assert.True(t, ValidReason(ReasonOther))
	assert.False(t, ValidReason(Reason("shrinkage")))
}
