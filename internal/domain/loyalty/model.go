// Package loyalty manages discount codes and customer spending rewards.
package loyalty

import (
	"context"

	"tillage/internal/core/apperror"
	"tillage/internal/core/entity"
	"tillage/internal/core/types"
)

// CodeKind distinguishes staff-issued codes from earned reward codes.
type CodeKind string

const (
	KindStaff  CodeKind = "staff"
	KindReward CodeKind = "reward"
)

// DiscountCode is a single-use flat-discount voucher. The percentage is
// fixed for the whole program; a code only gates whether it applies.
type DiscountCode struct {
	entity.BaseDocument

	// Code is the 8-character voucher text handed to the customer
	Code string `db:"code" json:"code"`

	Kind CodeKind `db:"kind" json:"kind"`

	// Phone links reward codes to the customer who earned them
	Phone string `db:"phone" json:"phone,omitempty"`

	// Active is cleared when the code is redeemed
	Active bool `db:"active" json:"active"`
}

// Validate implements Validatable interface.
func (c *DiscountCode) Validate(ctx context.Context) error {
	if c.Code == "" {
		return apperror.NewValidation("code is required")
	}
	if c.Kind != KindStaff && c.Kind != KindReward {
		return apperror.NewValidation("unknown code kind").
			WithDetail("kind", string(c.Kind))
	}
	return nil
}

// Customer accumulates lifetime spend per phone number and tracks how
// many reward codes were already minted for it.
type Customer struct {
	entity.BaseDocument

	Phone string `db:"phone" json:"phone"`
	Name  string `db:"name" json:"name,omitempty"`

	// TotalSpent is lifetime discounted spend, refunds excluded
	TotalSpent types.Money `db:"total_spent" json:"totalSpent"`

	// RewardsEarned counts reward codes minted so far
	RewardsEarned int `db:"rewards_earned" json:"rewardsEarned"`
}

// Validate implements Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Phone == "" {
		return apperror.NewValidation("phone is required")
	}
	return nil
}

// Settings holds the program parameters. A single row in practice.
type Settings struct {
	// SpendingTarget is the lifetime spend that earns one reward code
	SpendingTarget types.Money `db:"spending_target" json:"spendingTarget"`

	// DiscountPercent applied by any valid code (whole number, 10 = 10%)
	DiscountPercent int64 `db:"discount_percent" json:"discountPercent"`
}

// DefaultSettings returns the program defaults used when no row exists.
func DefaultSettings() Settings {
	return Settings{
		SpendingTarget:  types.MustMoney("10000"),
		DiscountPercent: 10,
	}
}

// MilestonesReached returns how many full spending targets the customer
// has crossed in total.
func (s Settings) MilestonesReached(totalSpent types.Money) int {
	if s.SpendingTarget.IsZero() || s.SpendingTarget.IsNegative() {
		return 0
	}
	return int(totalSpent.Div(s.SpendingTarget).IntPart())
}
