package config

import "time"

const (
	accessSecretVar  = "JWT_ACCESS_SECRET"
	refreshSecretVar = "JWT_REFRESH_SECRET"
	accessTTLVar     = "ACCESS_TOKEN_TTL"
	refreshTTLVar    = "REFRESH_TOKEN_TTL"
	issuerVar        = "JWT_ISSUER"
)

type TokenConfig interface {
	GetAccessSecret() string
	GetRefreshSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetIssuer() string
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessSecret() string {
	return GetEnv(accessSecretVar, "")
}

func (Tokens) GetRefreshSecret() string {
	return GetEnv(refreshSecretVar, "")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv(accessTTLVar, 15*time.Minute)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv(refreshTTLVar, 7*24*time.Hour) // 7 days
}

func (Tokens) GetIssuer() string {
	return GetEnv(issuerVar, "go-token-auth")
}
