package models

import "time"

type RegisterRequest struct {
	Username string   `json:"nome_usuario" validate:"required,min=3"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"senha" validate:"required,min=6,bytemax=72"`
	Role     UserRole `json:"role,omitempty" validate:"omitempty,oneof=administrator editor viewer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
}

// UpdateUserRequest replaces username and email. Password is only re-hashed
// when a new one is supplied.
type UpdateUserRequest struct {
	Username string  `json:"nome_usuario" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"senha,omitempty" validate:"omitempty,min=6,bytemax=72"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserProfile struct {
	ID       uint     `json:"id"`
	Username string   `json:"nome_usuario"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"nome_usuario"`
	Email    string `json:"email"`
}
