package jwt

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the fixed claim set of every token the service mints.
type Claims struct {
	Type string `json:"typ,omitempty"`
	jwtlib.RegisteredClaims
}

// SubjectID is the id of the user the token was issued to.
func (c *Claims) SubjectID() string {
	return c.Subject
}

func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
