package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the auth service. Handlers map these onto HTTP status codes.
var (
	// Registration / login
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Refresh
	ErrNoToken          = errors.New("no refresh token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrTokenRevoked     = errors.New("refresh token revoked")

	// Access guard
	ErrMissingToken          = errors.New("not authorized, no access token")
	ErrInvalidOrExpiredToken = errors.New("not authorized, token failed")

	ErrUserNotFound = errors.New("user not found")

	// General errors
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrInternal         = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
