package loyalty

import (
	"context"
)

// Repository persists codes, customers and program settings.
type Repository interface {
	// GetCodeForUpdate returns a code by its text with a row lock,
	// active or not. Not-found maps to the standard not found error.
	GetCodeForUpdate(ctx context.Context, code string) (*DiscountCode, error)

	// GetCode is the lock-free variant for read-only validation.
	GetCode(ctx context.Context, code string) (*DiscountCode, error)

	CreateCode(ctx context.Context, code *DiscountCode) error

	// UpdateCode persists the active flag with optimistic locking.
	UpdateCode(ctx context.Context, code *DiscountCode) error

	// GetCustomerForUpdate returns a locked customer row by phone,
	// or not found.
	GetCustomerForUpdate(ctx context.Context, phone string) (*Customer, error)

	CreateCustomer(ctx context.Context, c *Customer) error

	UpdateCustomer(ctx context.Context, c *Customer) error

	// GetSettings returns the program settings row, or not found when
	// the program was never configured.
	GetSettings(ctx context.Context) (Settings, error)
}
