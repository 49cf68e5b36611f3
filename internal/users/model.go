package users

import (
	"strings"
	"time"
)

// Roles assignable to a user. Role changes after creation are an admin
// operation outside this service.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is a registered account. The verified flag flips once on email
// confirmation; everything else is immutable after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Verified     bool      `json:"verified"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Validate checks the minimum fields for account creation.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrInvalidUsername
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// LoginRequest is the body for POST /api/login. Login accepts either the
// username or the email address.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
