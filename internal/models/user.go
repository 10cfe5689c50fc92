package models

import (
	"time"
)

// User is the root record every other record is owned by.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// Author is the denormalized snapshot of a user attached to feed posts.
type Author struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
