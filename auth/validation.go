package auth

import (
	"fmt"
	"net/mail"

	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/jrsteele09/go-token-auth/users"
)

const maxNameLength = 100

// ValidateRegisterRequest checks a normalised RegisterRequest.
func ValidateRegisterRequest(r *RegisterRequest) error {
	if r.Name == "" {
		return invalidInput(NameRequiredErr)
	}
	if len(r.Name) > maxNameLength {
		return invalidInput(fmt.Errorf("name must be at most %d characters", maxNameLength))
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return invalidInput(PasswordRequiredErr)
	}
	if err := users.ValidatePasswordStrength(r.Password); err != nil {
		return invalidInput(err)
	}
	return nil
}

// ValidateEmail accepts a bare address, not a "Name <addr>" form.
func ValidateEmail(email string) error {
	if email == "" {
		return invalidInput(EmailRequiredErr)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalidInput(EmailInvalidErr)
	}
	return nil
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, err.Error())
}
