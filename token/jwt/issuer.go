// Package jwt mints and verifies the access and refresh tokens.
package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-token-auth/internal/errors"
	"github.com/jrsteele09/go-token-auth/token"
	"github.com/pkg/errors"
)

const (
	DefaultAccessExpiry  = 15 * time.Minute
	DefaultRefreshExpiry = 7 * 24 * time.Hour
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer signs access tokens and refresh tokens with two distinct signers.
type Issuer struct {
	accessSigner  token.Signer
	refreshSigner token.Signer
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuerName    string
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

func WithAccessExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.accessExpiry = d
		}
	}
}

func WithRefreshExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		if d > 0 {
			i.refreshExpiry = d
		}
	}
}

func WithNowFunc(f func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = f
	}
}

// WithIssuerName sets the "iss" claim. Verification requires a matching issuer
// when one is configured.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		i.issuerName = name
	}
}

func NewIssuer(accessSigner, refreshSigner token.Signer, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		accessExpiry:  DefaultAccessExpiry,
		refreshExpiry: DefaultRefreshExpiry,
		nowFunc:       NowTimeFunc,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) AccessExpiry() time.Duration {
	return i.accessExpiry
}

func (i *Issuer) RefreshExpiry() time.Duration {
	return i.refreshExpiry
}

// IssueAccess mints a short-lived bearer token for subjectID.
func (i *Issuer) IssueAccess(subjectID string) (string, error) {
	return i.issue(subjectID, TypeAccess, i.accessExpiry, i.accessSigner)
}

// IssueRefresh mints a long-lived refresh token for subjectID.
func (i *Issuer) IssueRefresh(subjectID string) (string, error) {
	return i.issue(subjectID, TypeRefresh, i.refreshExpiry, i.refreshSigner)
}

func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return i.verifyType(raw, TypeAccess, i.accessSigner)
}

func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return i.verifyType(raw, TypeRefresh, i.refreshSigner)
}

// Verify checks the signature and expiry of raw against signer. Any failure
// other than expiry is reported as errors.ErrInvalidSignature.
func (i *Issuer) Verify(raw string, signer token.Signer) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.ErrInvalidSignature
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(i.nowFunc),
		jwtlib.WithExpirationRequired(),
	}
	if i.issuerName != "" {
		opts = append(opts, jwtlib.WithIssuer(i.issuerName))
	}

	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims, signer.GetVerificationKey, opts...)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.ErrExpired
		}
		return nil, apperrors.ErrInvalidSignature
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidSignature
	}
	return claims, nil
}

func (i *Issuer) verifyType(raw, typ string, signer token.Signer) (*Claims, error) {
	claims, err := i.Verify(raw, signer)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, apperrors.ErrInvalidSignature
	}
	return claims, nil
}

func (i *Issuer) issue(subjectID, typ string, expiry time.Duration, signer token.Signer) (string, error) {
	if subjectID == "" {
		return "", errors.New("cannot issue a token without a subject")
	}
	now := i.nowFunc()
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    i.issuerName,
			Subject:   subjectID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(), // jti keeps tokens minted in the same second distinct
		},
	}
	signed, err := signer.Sign(claims)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s token", typ)
	}
	return signed, nil
}
