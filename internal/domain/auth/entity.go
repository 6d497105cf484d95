package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrTokenInvalid means a supplied token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrTokenMissingClaim means the token verified but carries no subject email.
	ErrTokenMissingClaim = errors.New("token missing required claim")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when a caller acts on another user's account.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrPasswordMismatch indicates the current password is incorrect.
	ErrPasswordMismatch = errors.New("current password does not match")
	// ErrPasswordUnchanged indicates the new password matches the current one.
	ErrPasswordUnchanged = errors.New("new password must be different from current password")
	// ErrPasswordTooShort is returned when a password is below the configured minimum.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordTooLong is returned when a password exceeds what bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrEmailRequired is returned when an email is blank.
	ErrEmailRequired = errors.New("email is required")
)

// IsAuthenticationError reports whether err must be surfaced as an
// authentication rejection.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenMissingClaim)
}

// User models the account persisted in storage.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Firstname    string    `json:"firstname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}

// Claim is the identity payload carried by a signed token.
type Claim struct {
	SubjectEmail string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
