package users_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-token-auth/internal/utils"
	"github.com/jrsteele09/go-token-auth/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Password123", ""},
		{"digits only", "123456", ""},
		{"too short", "Pa1", "at least 6 characters"},
		{"multibyte counts runes", "ééééé", "at least 6 characters"},
		{"bcrypt limit", strings.Repeat("x", 72), ""},
		{"over bcrypt limit", "Aa1" + strings.Repeat("x", 80), "at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := users.HashPassword("Password123")
	require.NoError(t, err)
	require.NotEqual(t, "Password123", hash)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Password123"))
	require.False(t, u.CheckPassword("password123"))
}

func TestProfileOmitsSecrets(t *testing.T) {
	u := &users.User{
		ID:                 "u1",
		Name:               "Jane",
		Email:              "jane@example.com",
		PasswordHash:       "hash",
		RefreshTokenDigest: utils.Ptr("digest"),
	}
	require.True(t, u.HasActiveSession())

	p := u.Profile()
	require.Equal(t, "u1", p.ID)
	require.Equal(t, "Jane", p.Name)
	require.Equal(t, "jane@example.com", p.Email)
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "jane@example.com", users.NormalizeEmail("  Jane@EXAMPLE.com\t"))
}
