package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillage/internal/core/apperror"
	"tillage/internal/domain/loyalty"
	"tillage/internal/infrastructure/storage/postgres"
)

const (
	discountCodeTable    = "loy_discount_codes"
	customerTable        = "loy_customers"
	loyaltySettingsTable = "loy_settings"
)

// LoyaltyRepo implements loyalty.Repository. Codes and customers live
// in separate tables; settings is a single configuration row.
type LoyaltyRepo struct {
	codes     *BaseDocumentRepo[*loyalty.DiscountCode]
	customers *BaseDocumentRepo[*loyalty.Customer]
}

// NewLoyaltyRepo creates a new loyalty repository.
func NewLoyaltyRepo(txManager *postgres.TxManager) *LoyaltyRepo {
	return &LoyaltyRepo{
		codes: NewBaseDocumentRepo[*loyalty.DiscountCode](
			txManager,
			discountCodeTable,
			postgres.ExtractDBColumns[loyalty.DiscountCode](),
			func() *loyalty.DiscountCode { return &loyalty.DiscountCode{} },
		),
		customers: NewBaseDocumentRepo[*loyalty.Customer](
			txManager,
			customerTable,
			postgres.ExtractDBColumns[loyalty.Customer](),
			func() *loyalty.Customer { return &loyalty.Customer{} },
		),
	}
}

// GetCodeForUpdate returns a code by its text with a row lock.
func (r *LoyaltyRepo) GetCodeForUpdate(ctx context.Context, code string) (*loyalty.DiscountCode, error) {
	q := r.codes.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Suffix("FOR UPDATE")

	c, err := r.codes.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("discount code", code)
		}
		return nil, err
	}
	return c, nil
}

// GetCode returns a code by its text without locking.
func (r *LoyaltyRepo) GetCode(ctx context.Context, code string) (*loyalty.DiscountCode, error) {
	q := r.codes.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	c, err := r.codes.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("discount code", code)
		}
		return nil, err
	}
	return c, nil
}

// CreateCode inserts a new discount code.
func (r *LoyaltyRepo) CreateCode(ctx context.Context, code *loyalty.DiscountCode) error {
	return r.codes.Create(ctx, code)
}

// UpdateCode persists code changes with optimistic locking.
func (r *LoyaltyRepo) UpdateCode(ctx context.Context, code *loyalty.DiscountCode) error {
	return r.codes.Update(ctx, code)
}

// GetCustomerForUpdate returns a locked customer row by phone.
func (r *LoyaltyRepo) GetCustomerForUpdate(ctx context.Context, phone string) (*loyalty.Customer, error) {
	q := r.customers.baseSelect().
		Where(squirrel.Eq{"phone": phone}).
		Suffix("FOR UPDATE")

	c, err := r.customers.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", phone)
		}
		return nil, err
	}
	return c, nil
}

// CreateCustomer inserts a new customer.
func (r *LoyaltyRepo) CreateCustomer(ctx context.Context, c *loyalty.Customer) error {
	return r.customers.Create(ctx, c)
}

// UpdateCustomer persists customer changes with optimistic locking.
func (r *LoyaltyRepo) UpdateCustomer(ctx context.Context, c *loyalty.Customer) error {
	return r.customers.Update(ctx, c)
}

// GetSettings returns the program settings row, or not found when the
// program was never configured.
func (r *LoyaltyRepo) GetSettings(ctx context.Context) (loyalty.Settings, error) {
	q := r.codes.Builder().
		Select("spending_target", "discount_percent").
		From(loyaltySettingsTable).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return loyalty.Settings{}, fmt.Errorf("build query: %w", err)
	}

	var settings loyalty.Settings
	if err := pgxscan.Get(ctx, r.codes.Querier(ctx), &settings, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return loyalty.Settings{}, apperror.NewNotFound("loyalty settings", "singleton")
		}
		return loyalty.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// Ensure interface compliance.
var _ loyalty.Repository = (*LoyaltyRepo)(nil)
