package config

import "time"

type SecurityConfig interface {
	GetSecureCookies() bool
	GetMinSecretLength() int
	GetRefreshCookieName() string
	GetClientRefreshTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSecureCookies marks the refresh cookie Secure outside development.
func (Security) GetSecureCookies() bool {
	return EnvVars{}.IsProduction()
}

func (Security) GetMinSecretLength() int {
	return 32 // HS256 key should be at least the hash size
}

func (Security) GetRefreshCookieName() string {
	return "refreshToken"
}

func (Security) GetClientRefreshTimeout() time.Duration {
	return 10 * time.Second
}
