package loyalty

import (
	"context"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/tx"
	"tillage/internal/core/types"
	"tillage/pkg/codegen"
	"tillage/pkg/logger"
)

// Service is the discount and rewards engine. Code redemption is split
// in two: Resolve locks and checks the code at the start of a sale,
// Consume deactivates it just before commit. Both must run in the same
// transaction as the sale.
type Service struct {
	repo      Repository
	txManager tx.Manager
	codes     *codegen.Generator
}

// NewService creates the loyalty service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		codes:     codegen.New(),
	}
}

// Resolve locks an active code for the current transaction.
// Unknown, inactive or already-redeemed codes all map to the same
// invalid discount error so callers cannot probe the code space.
func (s *Service) Resolve(ctx context.Context, code string) (*DiscountCode, error) {
	if code == "" {
		return nil, apperror.NewInvalidDiscount(code)
	}
	dc, err := s.repo.GetCodeForUpdate(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInvalidDiscount(code)
		}
		return nil, err
	}
	if !dc.Active {
		return nil, apperror.NewInvalidDiscount(code)
	}
	return dc, nil
}

// Consume deactivates a resolved code. Runs inside the sale transaction
// so an aborted sale leaves the code redeemable.
func (s *Service) Consume(ctx context.Context, dc *DiscountCode) error {
	dc.Active = false
	return s.repo.UpdateCode(ctx, dc)
}

// Validate is the read-only check used by the register UI before the
// sale is submitted. It takes no locks and consumes nothing.
func (s *Service) Validate(ctx context.Context, code string) (bool, error) {
	dc, err := s.repo.GetCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return dc.Active, nil
}

// DiscountPercent returns the flat percentage applied by valid codes.
func (s *Service) DiscountPercent(ctx context.Context) int64 {
	return s.settings(ctx).DiscountPercent
}

func (s *Service) settings(ctx context.Context) Settings {
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		if !apperror.IsNotFound(err) {
			logger.Warn(ctx, "loyalty settings unavailable, using defaults", "error", err)
		}
		return DefaultSettings()
	}
	return st
}

// RecordSpend adds a sale total to the customer's lifetime spend and
// mints one reward code if a new spending milestone was crossed.
// Unknown phones get a customer row created on the fly. Returns the
// minted code, or nil when no milestone was crossed.
//
// Must run inside the sale transaction: the customer row is locked so
// two concurrent sales cannot mint two codes for the same milestone.
func (s *Service) RecordSpend(ctx context.Context, phone string, amount types.Money) (*DiscountCode, error) {
	if phone == "" || !amount.IsPositive() {
		return nil, nil
	}

	customer, err := s.repo.GetCustomerForUpdate(ctx, phone)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, err
		}
		customer = &Customer{
			BaseDocument: entity.NewBaseDocument(),
			Phone:        phone,
		}
		customer.TotalSpent = types.Zero()
		if err := s.repo.CreateCustomer(ctx, customer); err != nil {
			return nil, err
		}
	}

	customer.TotalSpent = customer.TotalSpent.Add(amount)

	st := s.settings(ctx)
	milestones := st.MilestonesReached(customer.TotalSpent)

	var minted *DiscountCode
	if milestones > customer.RewardsEarned {
		// One code per sale even if a large purchase crosses several
		// targets at once; rewards_earned jumps to the reached milestone.
		text, err := s.codes.Code()
		if err != nil {
			return nil, apperror.NewInternal(err)
		}
		minted = &DiscountCode{
			BaseDocument: entity.NewBaseDocument(),
			Code:         text,
			Kind:         KindReward,
			Phone:        phone,
			Active:       true,
		}
		if err := s.repo.CreateCode(ctx, minted); err != nil {
			return nil, err
		}
		customer.RewardsEarned = milestones
		logger.Info(ctx, "reward code minted",
			"phone", phone,
			"total_spent", customer.TotalSpent.String(),
			"rewards_earned", customer.RewardsEarned)
	}

	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return minted, nil
}

// MintStaffCode issues a staff discount code outside of any sale.
func (s *Service) MintStaffCode(ctx context.Context, note string) (*DiscountCode, error) {
	text, err := s.codes.Code()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	dc := &DiscountCode{
		BaseDocument: entity.NewBaseDocument(),
		Code:         text,
		Kind:         KindStaff,
		Active:       true,
	}
	if note != "" {
		dc.SetAttribute("note", note)
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateCode(ctx, dc)
	})
	if err != nil {
		return nil, err
	}
	return dc, nil
}
