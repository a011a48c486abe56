package shift

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	shifts []*CashierShift
}

func (r *fakeRepo) Create(ctx context.Context, s *CashierShift) error {
	r.shifts = append(r.shifts, s)
	return nil
}

func (r *fakeRepo) GetOpenByCashier(ctx context.Context, cashierID id.ID) (*CashierShift, error) {
	for _, s := range r.shifts {
		if s.CashierID == cashierID && !s.IsClosed {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("shift", cashierID.String())
}

func (r *fakeRepo) GetOpenByCashierForUpdate(ctx context.Context, cashierID id.ID) (*CashierShift, error) {
	return r.GetOpenByCashier(ctx, cashierID)
}

func (r *fakeRepo) Update(ctx context.Context, s *CashierShift) error {
	return nil
}

func (r *fakeRepo) List(ctx context.Context, cashierID *id.ID, limit int) ([]*CashierShift, error) {
	return r.shifts, nil
}

type fakeSales struct {
	totals SaleTotals
}

func (f *fakeSales) TotalsByCashier(ctx context.Context, cashierID id.ID, from, to time.Time) (SaleTotals, error) {
	return f.totals, nil
}

func TestOpenAndHasOpenShift(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeSales{}, nopTxManager{})
	cashier := id.New()

	open, err := svc.HasOpenShift(ctx, cashier)
	require.NoError(t, err)
	assert.False(t, open)

	sh, err := svc.Open(ctx, cashier, types.MustMoney("2000"))
	require.NoError(t, err)
	assert.False(t, sh.IsClosed)

	open, err = svc.HasOpenShift(ctx, cashier)
	require.NoError(t, err)
	assert.True(t, open)

	// Second open for the same cashier conflicts.
	_, err = svc.Open(ctx, cashier, types.MustMoney("2000"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestOpenRejectsNegativeFloat(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeSales{}, nopTxManager{})
	_, err := svc.Open(context.Background(), id.New(), types.MustMoney("-1"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCloseSummary(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	sales := &fakeSales{totals: SaleTotals{
		SalesCount:  12,
		TotalSales:  types.MustMoney("5400"),
		TotalCash:   types.MustMoney("3100"),
		RefundTotal: types.MustMoney("150"),
	}}
	svc := NewService(repo, sales, nopTxManager{})
	cashier := id.New()

	_, err := svc.Open(ctx, cashier, types.MustMoney("2000"))
	require.NoError(t, err)

	counted := types.MustMoney("5090")
	summary, err := svc.Close(ctx, cashier, &counted)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.SalesCount)
	assert.True(t, summary.TotalSales.Equal(types.MustMoney("5400")))
	assert.True(t, summary.ExpectedCash.Equal(types.MustMoney("5100")), "2000 float + 3100 cash")
	require.NotNil(t, summary.CashDifference)
	assert.True(t, summary.CashDifference.Equal(types.MustMoney("-10")))

	// Shift is closed now.
	open, err := svc.HasOpenShift(ctx, cashier)
	require.NoError(t, err)
	assert.False(t, open)

	// Closing again conflicts.
	_, err = svc.Close(ctx, cashier, nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestCloseWithoutCountSkipsReconciliation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{}, &fakeSales{}, nopTxManager{})
	cashier := id.New()

	_, err := svc.Open(ctx, cashier, types.MustMoney("1000"))
	require.NoError(t, err)

	summary, err := svc.Close(ctx, cashier, nil)
	require.NoError(t, err)
	assert.Nil(t, summary.EndingCashReported)
	assert.Nil(t, summary.CashDifference)
}
