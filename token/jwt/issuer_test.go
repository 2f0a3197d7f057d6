package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/jrsteele09/go-token-auth/token"
	"github.com/jrsteele09/go-token-auth/token/jwt"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-0123456789abcdef0123"
	refreshSecret = "refresh-secret-0123456789abcdef012"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newIssuer(c *clock, opts ...jwt.IssuerOption) *jwt.Issuer {
	opts = append([]jwt.IssuerOption{jwt.WithNowFunc(c.Now), jwt.WithIssuerName("test")}, opts...)
	return jwt.NewIssuer(token.NewHMACSigner(accessSecret), token.NewHMACSigner(refreshSecret), opts...)
}

func TestIssueAccess_SubjectAndExpiry(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(c)

	raw, err := issuer.IssueAccess("user-42")
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(raw)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.SubjectID())
	require.Equal(t, c.now, claims.IssuedAtTime().UTC())
	require.Equal(t, 15*time.Minute, claims.Expiry().Sub(claims.IssuedAtTime()))
	require.NotEmpty(t, claims.ID)
}

func TestIssueRefresh_SevenDays(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(c)

	raw, err := issuer.IssueRefresh("user-42")
	require.NoError(t, err)

	claims, err := issuer.VerifyRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, 7*24*time.Hour, claims.Expiry().Sub(claims.IssuedAtTime()))
}

func TestIssue_TokensInSameSecondDiffer(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(c)

	first, err := issuer.IssueRefresh("user-42")
	require.NoError(t, err)
	second, err := issuer.IssueRefresh("user-42")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerify_Expired(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(c)

	raw, err := issuer.IssueAccess("user-42")
	require.NoError(t, err)

	c.now = c.now.Add(16 * time.Minute)
	_, err = issuer.VerifyAccess(raw)
	require.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestVerify_WrongTokenType(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newIssuer(c)

	access, err := issuer.IssueAccess("user-42")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("user-42")
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	_, err = issuer.VerifyAccess(refresh)
	require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestVerify_SameTypeDifferentSecrets(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newIssuer(c)

	// Signed with the refresh secret but claiming to be an access token.
	forged, err := token.NewHMACSigner(refreshSecret).Sign(&jwt.Claims{
		Type: jwt.TypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "test",
			Subject:   "user-42",
			ExpiresAt: jwtlib.NewNumericDate(c.now.Add(time.Minute)),
		},
	})
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(forged)
	require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	issuer := newIssuer(&clock{now: time.Now()})

	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		_, err := issuer.VerifyAccess(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidSignature, raw)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	c := &clock{now: time.Now()}
	other := jwt.NewIssuer(token.NewHMACSigner(accessSecret), token.NewHMACSigner(refreshSecret),
		jwt.WithNowFunc(c.Now), jwt.WithIssuerName("someone-else"))

	raw, err := other.IssueAccess("user-42")
	require.NoError(t, err)

	_, err = newIssuer(c).VerifyAccess(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestIssue_CustomExpiry(t *testing.T) {
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(c, jwt.WithAccessExpiry(time.Minute), jwt.WithRefreshExpiry(time.Hour))
	require.Equal(t, time.Minute, issuer.AccessExpiry())
	require.Equal(t, time.Hour, issuer.RefreshExpiry())

	_, err := issuer.IssueAccess("")
	require.Error(t, err)
}
