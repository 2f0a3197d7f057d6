package config

import (
	"fmt"
	"strings"
)

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Security
	Storage
}

func New() Config {
	return mainConfig{}
}

// Validate checks the settings the server cannot start without.
func Validate(c Config) error {
	var problems []string

	accessSecret := c.GetAccessSecret()
	refreshSecret := c.GetRefreshSecret()
	if accessSecret == "" {
		problems = append(problems, accessSecretVar+" is required")
	}
	if refreshSecret == "" {
		problems = append(problems, refreshSecretVar+" is required")
	}
	if accessSecret != "" && accessSecret == refreshSecret {
		problems = append(problems, "access and refresh secrets must differ")
	}
	if c.IsProduction() {
		minLen := c.GetMinSecretLength()
		if accessSecret != "" && len(accessSecret) < minLen {
			problems = append(problems, fmt.Sprintf("%s must be at least %d bytes", accessSecretVar, minLen))
		}
		if refreshSecret != "" && len(refreshSecret) < minLen {
			problems = append(problems, fmt.Sprintf("%s must be at least %d bytes", refreshSecretVar, minLen))
		}
	}
	if c.GetAccessTokenExpiry() <= 0 || c.GetRefreshTokenExpiry() <= 0 {
		problems = append(problems, "token lifetimes must be positive")
	}

	switch c.GetUserStore() {
	case UserStoreMemory:
	case UserStorePostgres:
		if c.GetDatabaseURL() == "" {
			problems = append(problems, databaseURLVar+" is required for the postgres user store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown %s %q", userStoreVar, c.GetUserStore()))
	}

	switch c.GetRefreshStore() {
	case RefreshStoreUser:
	case RefreshStoreRedis:
		if c.GetRedisURL() == "" {
			problems = append(problems, redisURLVar+" is required for the redis refresh store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown %s %q", refreshStoreVar, c.GetRefreshStore()))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
