package auth_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-token-auth/auth"
	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, auth.ValidateEmail("jane@example.com"))
	})

	t.Run("empty", func(t *testing.T) {
		err := auth.ValidateEmail("")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Contains(t, err.Error(), "email is required")
	})

	t.Run("display name form", func(t *testing.T) {
		err := auth.ValidateEmail("Jane <jane@example.com>")
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("no at sign", func(t *testing.T) {
		require.Error(t, auth.ValidateEmail("jane.example.com"))
	})
}

func TestValidateRegisterRequest(t *testing.T) {
	req := &auth.RegisterRequest{Name: "  Jane ", Email: " Jane@Example.com ", Password: "Password1"}
	req.Normalize()
	require.Equal(t, "Jane", req.Name)
	require.Equal(t, "jane@example.com", req.Email)
	require.NoError(t, auth.ValidateRegisterRequest(req))

	req.Password = "12345"
	err := auth.ValidateRegisterRequest(req)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Contains(t, err.Error(), "at least 6 characters")

	req.Password = "Aa1" + strings.Repeat("x", 80)
	err = auth.ValidateRegisterRequest(req)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Contains(t, err.Error(), "at most 72 bytes")
}
