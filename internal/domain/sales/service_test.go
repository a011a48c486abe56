package sales

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillage/internal/core/apperror"
	"tillage/internal/core/id"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
	"tillage/internal/domain/inventory"
	"tillage/internal/domain/loyalty"
	"tillage/internal/domain/receipt"
	"tillage/internal/domain/shift"
)

// --- fakes ---
//
// The fake tx manager snapshots batch quantities before the callback
// and restores them when it fails, mirroring a rollback.

type fakeTxManager struct {
	ledger *fakeLedger
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := make(map[id.ID]types.Quantity)
	for _, b := range m.ledger.batches {
		snapshot[b.ID] = b.Quantity
	}
	if err := fn(ctx); err != nil {
		for _, b := range m.ledger.batches {
			b.Quantity = snapshot[b.ID]
		}
		return err
	}
	return nil
}

type fakeLedger struct {
	batches []*inventory.Batch
}

func (l *fakeLedger) AvailableBatches(ctx context.Context, productID id.ID) ([]*inventory.Batch, error) {
	var out []*inventory.Batch
	for _, b := range l.batches {
		if b.ProductID == productID && b.Quantity.IsPositive() {
			out = append(out, b)
		}
	}
	// FIFO: earliest expiry first, nulls last.
	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i], out[j]
		switch {
		case bi.ExpiryDate == nil && bj.ExpiryDate == nil:
			return false
		case bi.ExpiryDate == nil:
			return false
		case bj.ExpiryDate == nil:
			return true
		default:
			return bi.ExpiryDate.Before(*bj.ExpiryDate)
		}
	})
	return out, nil
}

func (l *fakeLedger) LatestBatch(ctx context.Context, productID id.ID) (*inventory.Batch, error) {
	var latest *inventory.Batch
	for _, b := range l.batches {
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

func (l *fakeLedger) Deduct(ctx context.Context, b *inventory.Batch, qty types.Quantity, name string) error {
	if qty > b.Quantity {
		return apperror.NewInsufficientStock(name, qty.Float64(), b.Quantity.Float64())
	}
	b.Quantity -= qty
	return nil
}

func (l *fakeLedger) Restore(ctx context.Context, b *inventory.Batch, qty types.Quantity) error {
	b.Quantity += qty
	return nil
}

func (l *fakeLedger) onHand(productID id.ID) types.Quantity {
	var total types.Quantity
	for _, b := range l.batches {
		if b.ProductID == productID {
			total += b.Quantity
		}
	}
	return total
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

func (f *fakeProducts) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	for _, p := range f.byID {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", barcode)
}

type fakeShifts struct {
	open map[id.ID]bool
}

func (f *fakeShifts) HasOpenShift(ctx context.Context, cashierID id.ID) (bool, error) {
	return f.open[cashierID], nil
}

type fakeDiscounts struct {
	codes      map[string]*loyalty.DiscountCode
	spendCalls []types.Money
	mintOnNext *loyalty.DiscountCode
}

func (f *fakeDiscounts) Resolve(ctx context.Context, code string) (*loyalty.DiscountCode, error) {
	dc, ok := f.codes[code]
	if !ok || !dc.Active {
		return nil, apperror.NewInvalidDiscount(code)
	}
	return dc, nil
}

func (f *fakeDiscounts) Consume(ctx context.Context, dc *loyalty.DiscountCode) error {
	dc.Active = false
	return nil
}

func (f *fakeDiscounts) RecordSpend(ctx context.Context, phone string, amount types.Money) (*loyalty.DiscountCode, error) {
	f.spendCalls = append(f.spendCalls, amount)
	minted := f.mintOnNext
	f.mintOnNext = nil
	return minted, nil
}

type fakeSalesRepo struct {
	transactions []*Transaction
	items        []*Item
	logs         []*Log
	receipts     map[id.ID]string
}

func newFakeSalesRepo() *fakeSalesRepo {
	return &fakeSalesRepo{receipts: make(map[id.ID]string)}
}

func (r *fakeSalesRepo) CreateTransaction(ctx context.Context, t *Transaction) error {
	r.transactions = append(r.transactions, t)
	return nil
}

func (r *fakeSalesRepo) GetTransaction(ctx context.Context, txnID id.ID) (*Transaction, error) {
	for _, t := range r.transactions {
		if t.ID == txnID {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", txnID.String())
}

func (r *fakeSalesRepo) SaveItems(ctx context.Context, items []*Item) error {
	r.items = append(r.items, items...)
	return nil
}

func (r *fakeSalesRepo) SaveLogs(ctx context.Context, logs []*Log) error {
	r.logs = append(r.logs, logs...)
	return nil
}

func (r *fakeSalesRepo) AttachReceipt(ctx context.Context, txnID id.ID, ref string) error {
	r.receipts[txnID] = ref
	return nil
}

func (r *fakeSalesRepo) ListItems(ctx context.Context, txnID id.ID) ([]*Item, error) {
	var out []*Item
	for _, it := range r.items {
		if it.TransactionID == txnID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeSalesRepo) ListTransactions(ctx context.Context, f ListFilter) ([]*Transaction, error) {
	return r.transactions, nil
}

func (r *fakeSalesRepo) TotalsByCashier(ctx context.Context, cashierID id.ID, from, to time.Time) (shift.SaleTotals, error) {
	return shift.SaleTotals{}, nil
}

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, data *receipt.Data) (string, error) {
	return "", errors.New("printer on fire")
}

// --- harness ---

type harness struct {
	svc       *Service
	ledger    *fakeLedger
	repo      *fakeSalesRepo
	discounts *fakeDiscounts
	cashier   id.ID
	milk      *product.Product
	milkBatch *inventory.Batch
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	milk := product.New("P-001", "Milk")
	milk.CostPrice = types.MustMoney("100")
	milk.SellingPrice = types.MustMoney("150")
	milk.IsActive = true

	batch := inventory.NewBatch(milk.ID, types.NewQuantityFromInt(10))

	ledger := &fakeLedger{batches: []*inventory.Batch{batch}}
	repo := newFakeSalesRepo()
	discounts := &fakeDiscounts{codes: make(map[string]*loyalty.DiscountCode)}
	cashier := id.New()

	svc := NewService(
		&fakeProducts{byID: map[id.ID]*product.Product{milk.ID: milk}},
		ledger,
		&fakeShifts{open: map[id.ID]bool{cashier: true}},
		discounts,
		repo,
		&fakeTxManager{ledger: ledger},
		nil,
		cfg,
	)

	return &harness{
		svc:       svc,
		ledger:    ledger,
		repo:      repo,
		discounts: discounts,
		cashier:   cashier,
		milk:      milk,
		milkBatch: batch,
	}
}

func (h *harness) saleRequest(qty int64) *CreateSaleRequest {
	received := types.MustMoney("10000")
	return &CreateSaleRequest{
		CashierID:      h.cashier,
		PaymentMethod:  PaymentCash,
		Items:          []CartLine{{ProductID: &h.milk.ID, Quantity: types.NewQuantityFromInt(qty)}},
		AmountReceived: &received,
	}
}

// --- tests ---

func TestCreateSaleBasicScenario(t *testing.T) {
	// cost=100, selling=150, batch qty=10, sale qty=4:
	// total=600, profit=200, remaining=6.
	h := newHarness(t, DefaultConfig())

	res, err := h.svc.CreateSale(context.Background(), h.saleRequest(4))
	require.NoError(t, err)

	assert.True(t, res.TotalAmount.Equal(types.MustMoney("600")))
	assert.True(t, res.TotalProfit.Equal(types.MustMoney("200")))
	assert.Equal(t, types.NewQuantityFromInt(6), h.milkBatch.Quantity)

	require.Len(t, res.Items, 1)
	assert.Equal(t, h.milkBatch.ID, res.Items[0].BatchID)
	require.Len(t, h.repo.items, 1)
	require.Len(t, h.repo.logs, 1)
	assert.Equal(t, ActionSold, h.repo.logs[0].Action)

	require.NotNil(t, res.ChangeDue)
	assert.True(t, res.ChangeDue.Equal(types.MustMoney("9400")))
}

func TestCreateSaleSpansBatchesFIFO(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(72 * time.Hour)
	h.milkBatch.ExpiryDate = &later
	early := inventory.NewBatch(h.milk.ID, types.NewQuantityFromInt(3))
	early.ExpiryDate = &soon
	h.ledger.batches = append(h.ledger.batches, early)

	res, err := h.svc.CreateSale(context.Background(), h.saleRequest(5))
	require.NoError(t, err)

	// Soonest-expiring batch drained first.
	assert.True(t, early.Quantity.IsZero())
	assert.Equal(t, types.NewQuantityFromInt(8), h.milkBatch.Quantity)
	require.Len(t, res.Items, 2)
	assert.Equal(t, early.ID, res.Items[0].BatchID)
	assert.Equal(t, types.NewQuantityFromInt(3), res.Items[0].Quantity)
	assert.Equal(t, types.NewQuantityFromInt(2), res.Items[1].Quantity)
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	_, err := h.svc.CreateSale(context.Background(), h.saleRequest(11))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Nothing persisted, batch untouched.
	assert.Equal(t, types.NewQuantityFromInt(10), h.milkBatch.Quantity)
	assert.Empty(t, h.repo.transactions)
	assert.Empty(t, h.repo.items)
	assert.Empty(t, h.repo.logs)
}

func TestCreateSaleMultiItemShortfallAbortsEverything(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	bread := product.New("P-002", "Bread")
	bread.CostPrice = types.MustMoney("30")
	bread.SellingPrice = types.MustMoney("50")
	bread.IsActive = true
	breadBatch := inventory.NewBatch(bread.ID, types.NewQuantityFromInt(1))
	h.ledger.batches = append(h.ledger.batches, breadBatch)
	h.svc.products.(*fakeProducts).byID[bread.ID] = bread

	received := types.MustMoney("10000")
	req := &CreateSaleRequest{
		CashierID:     h.cashier,
		PaymentMethod: PaymentCash,
		Items: []CartLine{
			{ProductID: &h.milk.ID, Quantity: types.NewQuantityFromInt(4)},
			{ProductID: &bread.ID, Quantity: types.NewQuantityFromInt(2)},
		},
		AmountReceived: &received,
	}

	_, err := h.svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The milk deduction from the first line is rolled back too.
	assert.Equal(t, types.NewQuantityFromInt(10), h.milkBatch.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(1), breadBatch.Quantity)
	assert.Empty(t, h.repo.transactions)
}

func TestCreateSaleShiftRequired(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.svc.shifts.(*fakeShifts).open[h.cashier] = false

	_, err := h.svc.CreateSale(context.Background(), h.saleRequest(1))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeShiftRequired))
	assert.Equal(t, types.NewQuantityFromInt(10), h.milkBatch.Quantity)
}

func TestCreateSaleInsufficientPayment(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := h.saleRequest(4) // total 600
	low := types.MustMoney("500")
	req.AmountReceived = &low

	_, err := h.svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientPayment))
	assert.Equal(t, types.NewQuantityFromInt(10), h.milkBatch.Quantity, "payment failure rolls back deductions")
}

func TestCreateSaleCashChange(t *testing.T) {
	// total=1000, received=1500 => change=500; received=900 fails.
	h := newHarness(t, DefaultConfig())
	h.milk.SellingPrice = types.MustMoney("250")

	req := h.saleRequest(4)
	received := types.MustMoney("1500")
	req.AmountReceived = &received

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.ChangeDue)
	assert.True(t, res.ChangeDue.Equal(types.MustMoney("500")))

	low := types.MustMoney("900")
	req2 := h.saleRequest(4)
	req2.AmountReceived = &low
	_, err = h.svc.CreateSale(context.Background(), req2)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientPayment))
}

func TestCreateSaleCardSkipsCashCheck(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := h.saleRequest(4)
	req.PaymentMethod = PaymentCard
	req.AmountReceived = nil

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, res.ChangeDue)
}

func TestRefund(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := h.saleRequest(3)
	req.IsRefund = true
	req.PaymentMethod = PaymentCard
	req.AmountReceived = nil

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	// Stock restored into the latest batch, item quantity negative.
	assert.Equal(t, types.NewQuantityFromInt(13), h.milkBatch.Quantity)
	require.Len(t, h.repo.items, 1)
	assert.Equal(t, types.NewQuantityFromInt(3).Neg(), h.repo.items[0].Quantity)
	assert.Equal(t, ActionRefund, h.repo.logs[0].Action)
	assert.True(t, res.TotalAmount.Equal(types.MustMoney("-450")))
	assert.True(t, res.TotalProfit.Equal(types.MustMoney("-150")))
}

func TestSaleThenRefundRoundTrip(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	before := h.ledger.onHand(h.milk.ID)

	_, err := h.svc.CreateSale(context.Background(), h.saleRequest(4))
	require.NoError(t, err)

	refund := h.saleRequest(4)
	refund.IsRefund = true
	refund.PaymentMethod = PaymentCard
	refund.AmountReceived = nil
	_, err = h.svc.CreateSale(context.Background(), refund)
	require.NoError(t, err)

	assert.Equal(t, before, h.ledger.onHand(h.milk.ID))
}

func TestRefundWithoutBatchesFails(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.ledger.batches = nil

	req := h.saleRequest(1)
	req.IsRefund = true
	req.PaymentMethod = PaymentCard
	req.AmountReceived = nil

	_, err := h.svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRefundIgnoresDiscountCode(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.discounts.codes["STAFF123"] = &loyalty.DiscountCode{Code: "STAFF123", Kind: loyalty.KindStaff, Active: true}

	req := h.saleRequest(2)
	req.IsRefund = true
	req.PaymentMethod = PaymentCard
	req.AmountReceived = nil
	req.DiscountCode = "STAFF123"

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	// Shelf price paid back in full: 2 * 150, no 10% off.
	assert.True(t, res.TotalAmount.Equal(types.MustMoney("-300")), "got %s", res.TotalAmount)
	assert.False(t, res.DiscountApplied)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].UnitPrice.Equal(types.MustMoney("150")))
	assert.True(t, res.Items[0].DiscountAmount.IsZero())

	// The code survives for a real sale.
	assert.True(t, h.discounts.codes["STAFF123"].Active)
}

func TestDiscountCode(t *testing.T) {
	h := newHarness(t, Config{FlatDiscountPercent: 10, LegacyDoubleDiscount: false})
	h.discounts.codes["STAFF123"] = &loyalty.DiscountCode{Code: "STAFF123", Kind: loyalty.KindStaff, Active: true}

	req := h.saleRequest(4)
	req.DiscountCode = "STAFF123"

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	// 150 -> 135 per unit, 4 units = 540.
	assert.True(t, res.TotalAmount.Equal(types.MustMoney("540")))
	assert.True(t, res.DiscountApplied)
	assert.Equal(t, "STAFF123", res.DiscountCode)
	assert.True(t, res.Items[0].DiscountAmount.Equal(types.MustMoney("15")))

	// Single use: consumed at commit, second attempt rejected.
	assert.False(t, h.discounts.codes["STAFF123"].Active)
	req2 := h.saleRequest(1)
	req2.DiscountCode = "STAFF123"
	_, err = h.svc.CreateSale(context.Background(), req2)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDiscount))
}

func TestLegacyDoubleDiscount(t *testing.T) {
	h := newHarness(t, DefaultConfig()) // legacy on
	h.discounts.codes["STAFF123"] = &loyalty.DiscountCode{Code: "STAFF123", Kind: loyalty.KindStaff, Active: true}

	req := h.saleRequest(4)
	req.DiscountCode = "STAFF123"

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	// Per-line: 150 -> 135, 4 units = 540; then again on the total: 486.
	assert.True(t, res.TotalAmount.Equal(types.MustMoney("486")), "got %s", res.TotalAmount)
}

func TestInvalidDiscountAbortsBeforeAllocation(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := h.saleRequest(4)
	req.DiscountCode = "BOGUS000"

	_, err := h.svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDiscount))
	assert.Equal(t, types.NewQuantityFromInt(10), h.milkBatch.Quantity)
}

func TestExpiredBatchWarnsButSells(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	h.milkBatch.ExpiryDate = &yesterday

	res, err := h.svc.CreateSale(context.Background(), h.saleRequest(2))
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "past expiry")
	assert.Equal(t, types.NewQuantityFromInt(8), h.milkBatch.Quantity)
}

func TestBatchDiscountWindowPrice(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	h.milkBatch.DiscountPercent = 20
	h.milkBatch.DiscountStart = &start
	h.milkBatch.DiscountEnd = &end

	res, err := h.svc.CreateSale(context.Background(), h.saleRequest(1))
	require.NoError(t, err)

	// 150 with 20% batch discount = 120.
	assert.True(t, res.TotalAmount.Equal(types.MustMoney("120")))
}

func TestLoyaltyAccrualAndMintedCode(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.discounts.mintOnNext = &loyalty.DiscountCode{Code: "RWRD1234", Kind: loyalty.KindReward, Active: true}

	req := h.saleRequest(4)
	req.PhoneNumber = "+79990001122"

	res, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, h.discounts.spendCalls, 1)
	assert.True(t, h.discounts.spendCalls[0].Equal(types.MustMoney("600")))
	assert.Equal(t, "RWRD1234", res.LoyaltyCode)
	require.NotNil(t, h.repo.transactions[0].LoyaltyCode)
	assert.Equal(t, "RWRD1234", *h.repo.transactions[0].LoyaltyCode)
}

func TestRefundSkipsLoyalty(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req := h.saleRequest(1)
	req.IsRefund = true
	req.PaymentMethod = PaymentCard
	req.AmountReceived = nil
	req.PhoneNumber = "+79990001122"

	_, err := h.svc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, h.discounts.spendCalls)
}

func TestReceiptFailureDoesNotRevertSale(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.svc.renderer = failingRenderer{}

	res, err := h.svc.CreateSale(context.Background(), h.saleRequest(2))
	require.NoError(t, err)

	assert.Contains(t, res.Warnings, "receipt generation failed")
	assert.Len(t, h.repo.transactions, 1, "sale stands without receipt")
	assert.Empty(t, h.repo.receipts)
}

func TestRequestValidation(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		req := h.saleRequest(1)
		req.Items = nil
		_, err := h.svc.CreateSale(ctx, req)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := h.saleRequest(0)
		_, err := h.svc.CreateSale(ctx, req)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("cash without amount", func(t *testing.T) {
		req := h.saleRequest(1)
		req.AmountReceived = nil
		_, err := h.svc.CreateSale(ctx, req)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("unknown payment method", func(t *testing.T) {
		req := h.saleRequest(1)
		req.PaymentMethod = "crypto"
		_, err := h.svc.CreateSale(ctx, req)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("inactive product", func(t *testing.T) {
		h.milk.IsActive = false
		defer func() { h.milk.IsActive = true }()
		_, err := h.svc.CreateSale(ctx, h.saleRequest(1))
		assert.True(t, apperror.IsNotFound(err))
	})
}
