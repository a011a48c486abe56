package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
)

// --- fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	batches  map[id.ID]*Batch
	restocks []*RestockLog
	updates  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{batches: make(map[id.ID]*Batch)}
}

func (r *fakeRepo) Create(ctx context.Context, b *Batch) error {
	r.batches[b.ID] = b
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, batchID id.ID) (*Batch, error) {
	b, ok := r.batches[batchID]
	if !ok {
		return nil, apperror.NewNotFound("batch", batchID.String())
	}
	return b, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, batchID id.ID) (*Batch, error) {
	return r.GetByID(ctx, batchID)
}

func (r *fakeRepo) AvailableForUpdate(ctx context.Context, productID id.ID) ([]*Batch, error) {
	var out []*Batch
	for _, b := range r.batches {
		if b.ProductID == productID && b.Quantity.IsPositive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) LatestForUpdate(ctx context.Context, productID id.ID) (*Batch, error) {
	var latest *Batch
	for _, b := range r.batches {
		if b.ProductID != productID {
			continue
		}
		if latest == nil {
			latest = b
			continue
		}
		if b.ExpiryDate != nil && (latest.ExpiryDate == nil || b.ExpiryDate.After(*latest.ExpiryDate)) {
			latest = b
		}
	}
	if latest == nil {
		return nil, apperror.NewNotFound("batch", productID.String())
	}
	return latest, nil
}

func (r *fakeRepo) Update(ctx context.Context, b *Batch) error {
	r.updates++
	r.batches[b.ID] = b
	return nil
}

func (r *fakeRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*Batch, error) {
	return r.AvailableForUpdate(ctx, productID)
}

func (r *fakeRepo) TotalOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range r.batches {
		if b.ProductID == productID {
			total += b.Quantity
		}
	}
	return total, nil
}

func (r *fakeRepo) CreateRestockLog(ctx context.Context, log *RestockLog) error {
	r.restocks = append(r.restocks, log)
	return nil
}

func (r *fakeRepo) ListRestockLogs(ctx context.Context, productID id.ID, limit int) ([]*RestockLog, error) {
	return r.restocks, nil
}

type fakeProducts struct {
	byID map[id.ID]*product.Product
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func newService(t *testing.T) (*Service, *fakeRepo, *product.Product) {
	t.Helper()
	p := product.New("P-001", "Milk")
	p.CostPrice = types.MustMoney("60")
	p.SellingPrice = types.MustMoney("85")
	p.IsActive = true

	repo := newFakeRepo()
	svc := NewService(repo, &fakeProducts{byID: map[id.ID]*product.Product{p.ID: p}}, nopTxManager{})
	return svc, repo, p
}

// --- tests ---

func TestCreateBatchWritesRestockLog(t *testing.T) {
	ctx := context.Background()
	svc, repo, p := newService(t)

	batch := NewBatch(p.ID, types.NewQuantityFromInt(24))
	require.NoError(t, svc.CreateBatch(ctx, batch, "ACME Foods", ""))

	require.Len(t, repo.restocks, 1)
	assert.Equal(t, batch.ID, repo.restocks[0].BatchID)
	assert.Equal(t, types.NewQuantityFromInt(24), repo.restocks[0].Quantity)

	onHand, err := svc.TotalOnHand(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(24), onHand)
}

func TestCreateBatchRejectsInactiveProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, p := newService(t)
	p.IsActive = false

	batch := NewBatch(p.ID, types.NewQuantityFromInt(5))
	err := svc.CreateBatch(ctx, batch, "", "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestDeduct(t *testing.T) {
	ctx := context.Background()
	svc, _, p := newService(t)
	batch := NewBatch(p.ID, types.NewQuantityFromInt(10))

	t.Run("partial", func(t *testing.T) {
		require.NoError(t, svc.Deduct(ctx, batch, types.NewQuantityFromInt(4), p.Name))
		assert.Equal(t, types.NewQuantityFromInt(6), batch.Quantity)
	})

	t.Run("over available", func(t *testing.T) {
		err := svc.Deduct(ctx, batch, types.NewQuantityFromInt(7), p.Name)
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))
		// Failed deduct must not change the batch.
		assert.Equal(t, types.NewQuantityFromInt(6), batch.Quantity)
	})

	t.Run("drain expired batch marks handled", func(t *testing.T) {
		past := time.Now().UTC().Add(-24 * time.Hour)
		expired := NewBatch(p.ID, types.NewQuantityFromInt(2))
		expired.ExpiryDate = &past

		require.NoError(t, svc.Deduct(ctx, expired, types.NewQuantityFromInt(2), p.Name))
		assert.True(t, expired.ExpiredHandled)
	})

	t.Run("drain marks handled before the date passes", func(t *testing.T) {
		future := time.Now().UTC().Add(48 * time.Hour)
		dated := NewBatch(p.ID, types.NewQuantityFromInt(5))
		dated.ExpiryDate = &future

		require.NoError(t, svc.Deduct(ctx, dated, types.NewQuantityFromInt(5), p.Name))
		assert.True(t, dated.ExpiredHandled, "empty batch must not alert once its date passes")
	})

	t.Run("partial deduct leaves handled clear", func(t *testing.T) {
		future := time.Now().UTC().Add(48 * time.Hour)
		dated := NewBatch(p.ID, types.NewQuantityFromInt(5))
		dated.ExpiryDate = &future

		require.NoError(t, svc.Deduct(ctx, dated, types.NewQuantityFromInt(3), p.Name))
		assert.False(t, dated.ExpiredHandled)
	})
}

func TestRestoreIsUnbounded(t *testing.T) {
	ctx := context.Background()
	svc, _, p := newService(t)
	batch := NewBatch(p.ID, types.NewQuantityFromInt(1))

	require.NoError(t, svc.Restore(ctx, batch, types.NewQuantityFromInt(100)))
	assert.Equal(t, types.NewQuantityFromInt(101), batch.Quantity)
}

func TestEffectiveUnitPrice(t *testing.T) {
	now := time.Now().UTC()
	selling := types.MustMoney("150")

	batch := NewBatch(id.New(), types.NewQuantityFromInt(10))

	t.Run("no discount", func(t *testing.T) {
		assert.True(t, batch.EffectiveUnitPrice(selling, now).Equal(types.MustMoney("150")))
	})

	t.Run("active window", func(t *testing.T) {
		start := now.Add(-time.Hour)
		end := now.Add(time.Hour)
		batch.DiscountPercent = 10
		batch.DiscountStart = &start
		batch.DiscountEnd = &end
		assert.True(t, batch.EffectiveUnitPrice(selling, now).Equal(types.MustMoney("135")))
	})

	t.Run("expired window", func(t *testing.T) {
		start := now.Add(-48 * time.Hour)
		end := now.Add(-24 * time.Hour)
		batch.DiscountStart = &start
		batch.DiscountEnd = &end
		assert.True(t, batch.EffectiveUnitPrice(selling, now).Equal(types.MustMoney("150")))
	})
}

func TestMarkExpiredHandled(t *testing.T) {
	ctx := context.Background()
	svc, repo, p := newService(t)

	fresh := NewBatch(p.ID, types.NewQuantityFromInt(3))
	require.NoError(t, repo.Create(ctx, fresh))
	err := svc.MarkExpiredHandled(ctx, fresh.ID)
	require.Error(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	stale := NewBatch(p.ID, types.NewQuantityFromInt(3))
	stale.ExpiryDate = &past
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, svc.MarkExpiredHandled(ctx, stale.ID))
	assert.True(t, stale.ExpiredHandled)
}
