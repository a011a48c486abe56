// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Position values for store staff.
const (
	PositionManager  = "manager"
	PositionEmployee = "employee"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    string
	LoginCode string // 4-digit numeric code the cashier logs in with
	Name      string
	Position  string // manager or employee
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// IsManager checks if the authenticated user holds the manager position.
func IsManager(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.Position == PositionManager
}
