package dto

import (
	"time"

	"tillage/internal/domain/auth"
)

// LoginRequest authenticates a cashier at the register.
type LoginRequest struct {
	LoginCode string `json:"loginCode" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	TokenType   string       `json:"tokenType"`
	User        UserResponse `json:"user"`
}

// FromLoginResult creates LoginResponse from the domain result.
func FromLoginResult(r *auth.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken: r.AccessToken,
		ExpiresAt:   r.ExpiresAt,
		TokenType:   r.TokenType,
		User:        FromUser(r.User),
	}
}

// RegisterUserRequest creates a new staff member.
type RegisterUserRequest struct {
	LoginCode string `json:"loginCode" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Position  string `json:"position" binding:"required"`
}

// ToRequest converts to the domain registration request.
func (r RegisterUserRequest) ToRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		LoginCode: r.LoginCode,
		Name:      r.Name,
		Password:  r.Password,
		Position:  r.Position,
	}
}

// UserResponse represents a staff member in API responses.
type UserResponse struct {
	ID          string     `json:"id"`
	LoginCode   string     `json:"loginCode"`
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Version     int        `json:"version"`
}

// FromUser creates UserResponse from domain entity.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		LoginCode:   u.LoginCode,
		Name:        u.Name,
		Position:    u.Position,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		Version:     u.Version,
	}
}

// SetUserActiveRequest enables or disables an account.
type SetUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
