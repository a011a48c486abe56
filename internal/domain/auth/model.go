// Package auth provides authentication for store staff.
package auth

import (
	"context"
	"time"

	"tillage/internal/core/apperror"
	appctx "tillage/internal/core/context"
	"tillage/internal/core/id"
)

// User is a store staff member. Cashiers log in at the register with a
// short numeric code plus a password.
type User struct {
	ID                  id.ID      `db:"id" json:"id"`
	LoginCode           string     `db:"login_code" json:"loginCode"`
	Name                string     `db:"name" json:"name"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Position            string     `db:"position" json:"position"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
	Version             int        `db:"version" json:"version"`
}

// NewUser creates an active user.
func NewUser(loginCode, name, passwordHash, position string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		LoginCode:    loginCode,
		Name:         name,
		PasswordHash: passwordHash,
		Position:     position,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if !ValidLoginCode(u.LoginCode) {
		return apperror.NewValidation("login code must be 4 digits").
			WithDetail("field", "loginCode")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if u.Position != appctx.PositionManager && u.Position != appctx.PositionEmployee {
		return apperror.NewValidation("position must be manager or employee").
			WithDetail("position", u.Position)
	}
	return nil
}

// ValidLoginCode reports whether s is a 4-digit register login code.
func ValidLoginCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsManager reports whether the user holds the manager position.
func (u *User) IsManager() bool {
	return u.Position == appctx.PositionManager
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// Credentials for register login.
type Credentials struct {
	LoginCode string `json:"loginCode"`
	Password  string `json:"password"`
}

// RegisterRequest creates a new staff member (manager only).
type RegisterRequest struct {
	LoginCode string `json:"loginCode"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Position  string `json:"position"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
	User        *User     `json:"user"`
}
