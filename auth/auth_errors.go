package auth

import "errors"

// Input validation failures. They are reported wrapped in errors.ErrInvalidInput.
var (
	NameRequiredErr     = errors.New("name is required")
	EmailRequiredErr    = errors.New("email is required")
	EmailInvalidErr     = errors.New("email is not a valid address")
	PasswordRequiredErr = errors.New("password is required")
)
