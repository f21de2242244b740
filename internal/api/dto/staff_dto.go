package dto

import (
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// StaffLoginRequest authenticates a dashboard operator.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Staff     StaffSummary     `json:"staff"`
	Role      domain.StaffRole `json:"role"`
}

// StaffSummary is the public view of an operator account.
type StaffSummary struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Role  domain.StaffRole `json:"role"`
}

// ChangePasswordRequest rotates the caller's credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
