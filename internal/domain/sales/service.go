package sales

import (
	"context"
	"fmt"
	"time"

	"tillage/internal/core/apperror"
	appctx "tillage/internal/core/context"
	"tillage/internal/core/id"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/internal/domain/catalogs/product"
	"tillage/internal/domain/inventory"
	"tillage/internal/domain/loyalty"
	"tillage/internal/domain/receipt"
	"tillage/pkg/logger"
)

// ProductResolver resolves cart lines to products.
type ProductResolver interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*product.Product, error)
}

// Ledger is the slice of the inventory service the processor needs.
// All batch reads take row locks and run inside the checkout transaction.
type Ledger interface {
	AvailableBatches(ctx context.Context, productID id.ID) ([]*inventory.Batch, error)
	LatestBatch(ctx context.Context, productID id.ID) (*inventory.Batch, error)
	Deduct(ctx context.Context, batch *inventory.Batch, qty types.Quantity, productName string) error
	Restore(ctx context.Context, batch *inventory.Batch, qty types.Quantity) error
}

// ShiftChecker answers the open-shift precondition.
type ShiftChecker interface {
	HasOpenShift(ctx context.Context, cashierID id.ID) (bool, error)
}

// DiscountEngine is the slice of the loyalty service the processor needs.
type DiscountEngine interface {
	Resolve(ctx context.Context, code string) (*loyalty.DiscountCode, error)
	Consume(ctx context.Context, dc *loyalty.DiscountCode) error
	RecordSpend(ctx context.Context, phone string, amount types.Money) (*loyalty.DiscountCode, error)
}

// Config tunes discount application.
type Config struct {
	// FlatDiscountPercent is the literal percentage any valid code
	// grants, regardless of the code's own fields.
	FlatDiscountPercent int64

	// LegacyDoubleDiscount reapplies the flat percentage to the summed
	// total on top of the per-line application. The historical behavior
	// this system replaces did exactly that, so it defaults to on;
	// disable once downstream reporting is reconciled.
	LegacyDoubleDiscount bool
}

// DefaultConfig matches the historical behavior.
func DefaultConfig() Config {
	return Config{
		FlatDiscountPercent:  10,
		LegacyDoubleDiscount: true,
	}
}

// Service is the checkout state machine. CreateSale is the single
// entry point for both sales and refunds.
type Service struct {
	products  ProductResolver
	ledger    Ledger
	shifts    ShiftChecker
	discounts DiscountEngine
	repo      Repository
	txManager tx.Manager
	renderer  receipt.Renderer
	cfg       Config
}

// NewService creates the sale processor. renderer may be nil when
// receipt generation is disabled.
func NewService(
	products ProductResolver,
	ledger Ledger,
	shifts ShiftChecker,
	discounts DiscountEngine,
	repo Repository,
	txManager tx.Manager,
	renderer receipt.Renderer,
	cfg Config,
) *Service {
	if cfg.FlatDiscountPercent <= 0 {
		cfg.FlatDiscountPercent = 10
	}
	return &Service{
		products:  products,
		ledger:    ledger,
		shifts:    shifts,
		discounts: discounts,
		repo:      repo,
		txManager: txManager,
		renderer:  renderer,
		cfg:       cfg,
	}
}

// allocation accumulates the working state of one checkout.
type allocation struct {
	items    []*Item
	logs     []*Log
	results  []ItemResult
	warnings []string

	totalAmount types.Money
	totalProfit types.Money
}

// CreateSale runs the whole checkout atomically: resolve discount,
// allocate batches, compute totals, persist, consume the code, accrue
// loyalty. Any failure before commit leaves no trace. The receipt is
// rendered after commit and its failure only produces a warning.
func (s *Service) CreateSale(ctx context.Context, req *CreateSaleRequest) (*TransactionResult, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	open, err := s.shifts.HasOpenShift(ctx, req.CashierID)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, apperror.NewShiftRequired(req.CashierID.String())
	}

	var (
		txn    *Transaction
		alloc  *allocation
		minted *loyalty.DiscountCode
	)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Discount invalidity aborts before any batch is touched.
		// Refunds pay back shelf price: a code sent with a refund is
		// ignored rather than consumed.
		var code *loyalty.DiscountCode
		if req.DiscountCode != "" && !req.IsRefund {
			code, err = s.discounts.Resolve(ctx, req.DiscountCode)
			if err != nil {
				return err
			}
		}
		discountApplied := code != nil

		alloc = &allocation{
			totalAmount: types.Zero(),
			totalProfit: types.Zero(),
		}

		txn = &Transaction{
			CashierID:     req.CashierID,
			PaymentMethod: req.PaymentMethod,
			IsRefund:      req.IsRefund,
		}
		txn.ID = id.New()
		now := time.Now().UTC()
		txn.CreatedAt = now
		txn.UpdatedAt = now
		txn.Version = 1

		for _, line := range req.Items {
			p, err := s.resolveProduct(ctx, line)
			if err != nil {
				return err
			}
			if req.IsRefund {
				err = s.refundLine(ctx, txn, alloc, p, line.Quantity, now)
			} else {
				err = s.sellLine(ctx, txn, alloc, p, line.Quantity, discountApplied, now)
			}
			if err != nil {
				return err
			}
		}

		total := types.RoundMoney(alloc.totalAmount)
		if discountApplied && s.cfg.LegacyDoubleDiscount {
			// Historical quirk: the flat discount was already applied
			// per line, then once more on the summed total.
			total = types.ApplyPercentDiscount(total, s.cfg.FlatDiscountPercent)
		}
		txn.TotalAmount = total
		txn.TotalProfit = types.RoundMoney(alloc.totalProfit)

		if req.PaymentMethod == PaymentCash && !req.IsRefund {
			received := *req.AmountReceived
			if received.LessThan(total) {
				return apperror.NewInsufficientPayment(total.String(), received.String())
			}
			change := types.RoundMoney(received.Sub(total))
			txn.AmountReceived = &received
			txn.ChangeDue = &change
		}

		if discountApplied {
			if err := s.discounts.Consume(ctx, code); err != nil {
				return err
			}
			txn.DiscountCode = &code.Code
		}

		if req.PhoneNumber != "" && !req.IsRefund {
			minted, err = s.discounts.RecordSpend(ctx, req.PhoneNumber, txn.TotalAmount)
			if err != nil {
				return err
			}
			if minted != nil {
				txn.LoyaltyCode = &minted.Code
			}
		}

		if err := s.repo.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		if err := s.repo.SaveItems(ctx, alloc.items); err != nil {
			return err
		}
		return s.repo.SaveLogs(ctx, alloc.logs)
	})
	if err != nil {
		return nil, err
	}

	result := &TransactionResult{
		TransactionID:   txn.ID,
		Timestamp:       txn.CreatedAt,
		TotalAmount:     txn.TotalAmount,
		TotalProfit:     txn.TotalProfit,
		PaymentMethod:   txn.PaymentMethod,
		ChangeDue:       txn.ChangeDue,
		DiscountApplied: txn.DiscountCode != nil,
		Items:           alloc.results,
		Warnings:        alloc.warnings,
	}
	if txn.DiscountCode != nil {
		result.DiscountCode = *txn.DiscountCode
	}
	if minted != nil {
		result.LoyaltyCode = minted.Code
	}

	s.renderReceipt(ctx, txn, result)

	logger.Info(ctx, "sale committed",
		"transaction_id", txn.ID.String(),
		"cashier_id", txn.CashierID.String(),
		"is_refund", txn.IsRefund,
		"total_amount", txn.TotalAmount.String(),
		"items", len(alloc.items))
	return result, nil
}

func (s *Service) resolveProduct(ctx context.Context, line CartLine) (*product.Product, error) {
	var (
		p   *product.Product
		err error
	)
	if line.ProductID != nil {
		p, err = s.products.GetByID(ctx, *line.ProductID)
	} else {
		p, err = s.products.GetByBarcode(ctx, line.Barcode)
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperror.NewNotFound("product", p.Name)
	}
	return p, nil
}

// sellLine allocates one cart line across batches in FIFO order.
func (s *Service) sellLine(ctx context.Context, txn *Transaction, alloc *allocation, p *product.Product, qty types.Quantity, discountApplied bool, now time.Time) error {
	batches, err := s.ledger.AvailableBatches(ctx, p.ID)
	if err != nil {
		return err
	}

	remaining := qty
	available := types.Quantity(0)
	for _, b := range batches {
		available += b.Quantity
	}
	if remaining > available {
		// Checked up front so no batch is mutated on shortfall; the
		// row locks are already held, nothing can shrink underneath.
		return apperror.NewInsufficientStock(p.Name, remaining.Float64(), available.Float64())
	}

	for _, b := range batches {
		if remaining.IsZero() {
			break
		}
		take := remaining.Min(b.Quantity)

		if b.IsExpired(now) && !b.ExpiredHandled {
			alloc.warnings = append(alloc.warnings,
				fmt.Sprintf("batch %s of %s is past expiry (%s)",
					b.ID, p.Name, b.ExpiryDate.Format("2006-01-02")))
		}

		original := b.EffectiveUnitPrice(p.SellingPrice, now)
		unitPrice := original
		if discountApplied {
			unitPrice = types.ApplyPercentDiscount(original, s.cfg.FlatDiscountPercent)
		}

		if err := s.ledger.Deduct(ctx, b, take, p.Name); err != nil {
			return err
		}

		lineTotal := types.RoundMoney(unitPrice.Mul(take.Decimal()))
		profit := types.RoundMoney(unitPrice.Sub(p.CostPrice).Mul(take.Decimal()))
		alloc.totalAmount = alloc.totalAmount.Add(lineTotal)
		alloc.totalProfit = alloc.totalProfit.Add(profit)

		alloc.append(txn, p, b.ID, take, unitPrice, original, profit, ActionSold, now)
		remaining -= take
	}
	return nil
}

// refundLine restores quantity into the most recent batch. The unit
// price is the plain current selling price, never discounted, and it
// is a snapshot of the current product fields, not the original sale.
func (s *Service) refundLine(ctx context.Context, txn *Transaction, alloc *allocation, p *product.Product, qty types.Quantity, now time.Time) error {
	b, err := s.ledger.LatestBatch(ctx, p.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("batch", p.Name)
		}
		return err
	}

	if err := s.ledger.Restore(ctx, b, qty); err != nil {
		return err
	}

	original := types.RoundMoney(p.SellingPrice)
	unitPrice := original

	signed := qty.Neg()
	lineTotal := types.RoundMoney(unitPrice.Mul(signed.Decimal()))
	profit := types.RoundMoney(unitPrice.Sub(p.CostPrice).Mul(signed.Decimal()))
	alloc.totalAmount = alloc.totalAmount.Add(lineTotal)
	alloc.totalProfit = alloc.totalProfit.Add(profit)

	alloc.append(txn, p, b.ID, signed, unitPrice, original, profit, ActionRefund, now)
	return nil
}

func (a *allocation) append(txn *Transaction, p *product.Product, batchID id.ID, qty types.Quantity, unitPrice, original, profit types.Money, action LogAction, now time.Time) {
	item := &Item{
		TransactionID: txn.ID,
		ProductID:     p.ID,
		BatchID:       batchID,
		Quantity:      qty,
		UnitPrice:     unitPrice,
		CostPrice:     p.CostPrice,
		Profit:        profit,
	}
	item.ID = id.New()
	item.Version = 1
	a.items = append(a.items, item)

	log := &Log{
		TransactionID: txn.ID,
		ProductID:     p.ID,
		BatchID:       batchID,
		Quantity:      qty,
		Action:        action,
		PerformedBy:   txn.CashierID,
		PerformedAt:   now,
	}
	log.ID = id.New()
	log.Version = 1
	a.logs = append(a.logs, log)

	a.results = append(a.results, ItemResult{
		ProductName:    p.Name,
		BatchID:        batchID,
		Quantity:       qty,
		UnitPrice:      unitPrice,
		OriginalPrice:  original,
		DiscountAmount: types.RoundMoney(original.Sub(unitPrice)),
		Profit:         profit,
	})
}

// renderReceipt runs after commit. Failures become warnings, never errors.
func (s *Service) renderReceipt(ctx context.Context, txn *Transaction, result *TransactionResult) {
	if s.renderer == nil {
		return
	}

	data := &receipt.Data{
		TransactionID: txn.ID.String(),
		Timestamp:     txn.CreatedAt,
		Total:         txn.TotalAmount,
		PaymentMethod: string(txn.PaymentMethod),
	}
	if user := appctx.GetUser(ctx); user != nil {
		data.CashierName = user.Name
	}
	subtotal := types.Zero()
	for _, it := range result.Items {
		lineTotal := types.RoundMoney(it.UnitPrice.Mul(it.Quantity.Decimal()))
		subtotal = subtotal.Add(types.RoundMoney(it.OriginalPrice.Mul(it.Quantity.Decimal())))
		data.Lines = append(data.Lines, receipt.Line{
			Name:      it.ProductName,
			Quantity:  it.Quantity.Abs(),
			UnitPrice: it.UnitPrice,
			Total:     lineTotal,
			IsRefund:  it.Quantity.IsNegative(),
		})
	}
	data.Subtotal = types.RoundMoney(subtotal)
	data.DiscountAmount = types.RoundMoney(subtotal.Sub(txn.TotalAmount))
	data.AmountReceived = txn.AmountReceived
	data.Change = txn.ChangeDue
	data.RewardCode = result.LoyaltyCode

	ref, err := s.renderer.Render(ctx, data)
	if err != nil {
		logger.Error(ctx, "receipt rendering failed",
			"transaction_id", txn.ID.String(), "error", err)
		result.Warnings = append(result.Warnings, "receipt generation failed")
		return
	}

	if err := s.repo.AttachReceipt(ctx, txn.ID, ref); err != nil {
		logger.Error(ctx, "receipt attachment failed",
			"transaction_id", txn.ID.String(), "error", err)
		result.Warnings = append(result.Warnings, "receipt saved but not attached")
		return
	}
	txn.ReceiptRef = &ref
	result.ReceiptRef = ref
}

// GetTransaction returns one committed transaction with its items.
func (s *Service) GetTransaction(ctx context.Context, txnID id.ID) (*Transaction, []*Item, error) {
	txn, err := s.repo.GetTransaction(ctx, txnID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, txnID)
	if err != nil {
		return nil, nil, err
	}
	return txn, items, nil
}

// ListTransactions returns committed transactions matching the filter.
func (s *Service) ListTransactions(ctx context.Context, f ListFilter) ([]*Transaction, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	return s.repo.ListTransactions(ctx, f)
}
