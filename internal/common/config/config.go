package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidTokenSecret = errors.New("token secret must be at least 32 bytes")
	ErrSecretsNotDistinct = errors.New("access and refresh secrets must differ")
)

type Config struct {
	HTTPPort           string
	DatabaseURL        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RequestTimeout     time.Duration
}

// Load reads configuration from the environment. Secrets and the database URL
// have no defaults: the service refuses to start without them.
func Load() (Config, error) {
	accessSecret, err := mustEnv("JWT_ACCESS_SECRET")
	if err != nil {
		return Config{}, err
	}

	refreshSecret, err := mustEnv("JWT_REFRESH_SECRET")
	if err != nil {
		return Config{}, err
	}

	if err := validateSecret("JWT_ACCESS_SECRET", accessSecret); err != nil {
		return Config{}, err
	}
	if err := validateSecret("JWT_REFRESH_SECRET", refreshSecret); err != nil {
		return Config{}, err
	}
	if accessSecret == refreshSecret {
		return Config{}, ErrSecretsNotDistinct
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:           getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:        databaseURL,
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     getDurationEnv("JWT_ACCESS_EXPIRES_IN", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL:    getDurationEnv("JWT_REFRESH_EXPIRES_IN", constants.DefaultRefreshTokenTTL),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}, nil
}

func validateSecret(name, secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: %s is %d bytes", ErrInvalidTokenSecret, name, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
