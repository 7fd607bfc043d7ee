package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/atriumhq/atrium/pkg/jwtx"
)

type Config struct {
	Issuer        string // Optional: issuer claim for tokens (default: atrium)
	AccessSecret  string // Required: HMAC secret for access tokens
	RefreshSecret string // Required: HMAC secret for refresh tokens, distinct from AccessSecret

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./atrium.db)
	PepperFile   string // Optional: path to pepper file for credential hashing (default: ./pepper)

	StripeSecretKey string // Optional: Stripe API key; billing routes 500 without it

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	JoinRequestRetention time.Duration // Resolved join requests older than this are purged (default: 30 days)
}

var (
	ErrMissingSecrets = errors.New("ATRIUM_ACCESS_SECRET and ATRIUM_REFRESH_SECRET are required")
	ErrSharedSecret   = errors.New("ATRIUM_ACCESS_SECRET and ATRIUM_REFRESH_SECRET must differ")
)

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("ATRIUM_ISSUER", "atrium"),
		AccessSecret:         os.Getenv("ATRIUM_ACCESS_SECRET"),
		RefreshSecret:        os.Getenv("ATRIUM_REFRESH_SECRET"),
		AccessTokenTTL:       getEnvDurationOrDefault("ATRIUM_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:      getEnvDurationOrDefault("ATRIUM_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:         getEnvOrDefault("ATRIUM_DATABASE_FILE", "atrium.db"),
		PepperFile:           getEnvOrDefault("ATRIUM_PEPPER_FILE", "pepper"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		JoinRequestRetention: getEnvDurationOrDefault("JOIN_REQUEST_RETENTION", 30*24*time.Hour),
	}
}

// Validate rejects configurations that would silently weaken token security.
func (c Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return ErrMissingSecrets
	}
	if c.AccessSecret == c.RefreshSecret {
		return ErrSharedSecret
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
