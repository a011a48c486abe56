package loyalty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/types"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	codes     map[string]*DiscountCode
	customers map[string]*Customer
	settings  *Settings
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		codes:     make(map[string]*DiscountCode),
		customers: make(map[string]*Customer),
	}
}

func (r *fakeRepo) GetCodeForUpdate(ctx context.Context, code string) (*DiscountCode, error) {
	return r.GetCode(ctx, code)
}

func (r *fakeRepo) GetCode(ctx context.Context, code string) (*DiscountCode, error) {
	dc, ok := r.codes[code]
	if !ok {
		return nil, apperror.NewNotFound("discount code", code)
	}
	return dc, nil
}

func (r *fakeRepo) CreateCode(ctx context.Context, dc *DiscountCode) error {
	r.codes[dc.Code] = dc
	return nil
}

func (r *fakeRepo) UpdateCode(ctx context.Context, dc *DiscountCode) error {
	r.codes[dc.Code] = dc
	return nil
}

func (r *fakeRepo) GetCustomerForUpdate(ctx context.Context, phone string) (*Customer, error) {
	c, ok := r.customers[phone]
	if !ok {
		return nil, apperror.NewNotFound("customer", phone)
	}
	return c, nil
}

func (r *fakeRepo) CreateCustomer(ctx context.Context, c *Customer) error {
	r.customers[c.Phone] = c
	return nil
}

func (r *fakeRepo) UpdateCustomer(ctx context.Context, c *Customer) error {
	r.customers[c.Phone] = c
	return nil
}

func (r *fakeRepo) GetSettings(ctx context.Context) (Settings, error) {
	if r.settings == nil {
		return Settings{}, apperror.NewNotFound("loyalty settings", "singleton")
	}
	return *r.settings, nil
}

func activeCode(repo *fakeRepo, text string) *DiscountCode {
	dc := &DiscountCode{
		BaseDocument: entity.NewBaseDocument(),
		Code:         text,
		Kind:         KindStaff,
		Active:       true,
	}
	repo.codes[text] = dc
	return dc
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	activeCode(repo, "STAFF123")

	t.Run("active code resolves", func(t *testing.T) {
		dc, err := svc.Resolve(ctx, "STAFF123")
		require.NoError(t, err)
		assert.Equal(t, "STAFF123", dc.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "NOPE0000")
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDiscount))
	})

	t.Run("consumed code no longer resolves", func(t *testing.T) {
		dc, err := svc.Resolve(ctx, "STAFF123")
		require.NoError(t, err)
		require.NoError(t, svc.Consume(ctx, dc))

		_, err = svc.Resolve(ctx, "STAFF123")
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDiscount))
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	dc := activeCode(repo, "STAFF123")

	ok, err := svc.Validate(ctx, "STAFF123")
	require.NoError(t, err)
	assert.True(t, ok)

	dc.Active = false
	ok, err = svc.Validate(ctx, "STAFF123")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Validate(ctx, "MISSING1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSpendMintsOnMilestone(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.settings = &Settings{SpendingTarget: types.MustMoney("10000"), DiscountPercent: 10}
	svc := NewService(repo, nopTxManager{})

	// 9000 spent: below target, nothing minted.
	minted, err := svc.RecordSpend(ctx, "+79990001122", types.MustMoney("9000"))
	require.NoError(t, err)
	assert.Nil(t, minted)

	c := repo.customers["+79990001122"]
	require.NotNil(t, c)
	assert.True(t, c.TotalSpent.Equal(types.MustMoney("9000")))
	assert.Equal(t, 0, c.RewardsEarned)

	// +3000 crosses 10000: exactly one reward code.
	minted, err = svc.RecordSpend(ctx, "+79990001122", types.MustMoney("3000"))
	require.NoError(t, err)
	require.NotNil(t, minted)
	assert.Equal(t, KindReward, minted.Kind)
	assert.True(t, minted.Active)
	assert.Len(t, minted.Code, 8)

	c = repo.customers["+79990001122"]
	assert.Equal(t, 1, c.RewardsEarned)

	// Further spend below the next target mints nothing.
	minted, err = svc.RecordSpend(ctx, "+79990001122", types.MustMoney("100"))
	require.NoError(t, err)
	assert.Nil(t, minted)
}

func TestRecordSpendDoubleMilestoneMintsOneCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.settings = &Settings{SpendingTarget: types.MustMoney("10000"), DiscountPercent: 10}
	svc := NewService(repo, nopTxManager{})

	// One huge purchase crosses two targets: still one code, but the
	// milestone counter catches up so no code is owed later.
	minted, err := svc.RecordSpend(ctx, "+79990001122", types.MustMoney("25000"))
	require.NoError(t, err)
	require.NotNil(t, minted)
	assert.Equal(t, 2, repo.customers["+79990001122"].RewardsEarned)
}

func TestRecordSpendDefaultsWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo() // no settings row
	svc := NewService(repo, nopTxManager{})

	minted, err := svc.RecordSpend(ctx, "+79990001122", types.MustMoney("10000"))
	require.NoError(t, err)
	require.NotNil(t, minted, "default target is 10000")
}

func TestRecordSpendIgnoresEmptyPhone(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	minted, err := svc.RecordSpend(ctx, "", types.MustMoney("500"))
	require.NoError(t, err)
	assert.Nil(t, minted)
	assert.Empty(t, repo.customers)
}

func TestMintStaffCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	dc, err := svc.MintStaffCode(ctx, "weekend promo")
	require.NoError(t, err)
	assert.Equal(t, KindStaff, dc.Kind)
	assert.True(t, dc.Active)
	assert.Len(t, dc.Code, 8)
}

func TestMilestonesReached(t *testing.T) {
	st := Settings{SpendingTarget: types.MustMoney("10000")}
	assert.Equal(t, 0, st.MilestonesReached(types.MustMoney("9999.99")))
	assert.Equal(t, 1, st.MilestonesReached(types.MustMoney("10000")))
	assert.Equal(t, 2, st.MilestonesReached(types.MustMoney("25000")))

	// Zero target never mints.
	assert.Equal(t, 0, Settings{SpendingTarget: types.Zero()}.MilestonesReached(types.MustMoney("100")))
}
