package users

import "errors"

var (
	// ErrInvalidUsername is returned when the username is blank
	ErrInvalidUsername = errors.New("username is required")

	// ErrInvalidEmail is returned when the email is missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrWeakPassword is returned when the password is under 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrUserExists is returned when the username or email is already taken
	ErrUserExists = errors.New("username or email already registered")

	// ErrUserNotFound is returned when a user lookup finds nothing
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotVerified is returned when an unverified account logs in
	ErrNotVerified = errors.New("email not verified")

	// ErrInvalidToken is returned for expired or tampered verification tokens
	ErrInvalidToken = errors.New("verification token invalid or expired")
)
