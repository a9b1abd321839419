// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/mailvend/mailvend/internal/model"
)

// SignUpRequest represents the request body for creating an account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest represents the request body for signing in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned by sign-up and sign-in.
type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToSessionResponse builds a SessionResponse for a user.
func ToSessionResponse(user *model.User, role model.Role, token string) SessionResponse {
	return SessionResponse{
		Token: token,
		User: UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Role:      string(role),
			CreatedAt: user.CreatedAt,
		},
	}
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
