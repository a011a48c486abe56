package auth

import (
	"context"

	"tillage/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByLoginCode retrieves an active user by register login code.
	GetByLoginCode(ctx context.Context, loginCode string) (*User, error)

	// Update updates user data.
	Update(ctx context.Context, user *User) error

	// SetActive enables or disables an account.
	SetActive(ctx context.Context, userID id.ID, active bool) error

	// List retrieves users with filtering.
	List(ctx context.Context, filter UserFilter) ([]User, int, error)

	// ExistsByLoginCode checks login code uniqueness.
	ExistsByLoginCode(ctx context.Context, loginCode string) (bool, error)
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	Position string
	Limit    int
	Offset   int
}
