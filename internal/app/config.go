package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/RafatAiub/AmarBin-Backend/pkg/jwtx"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: amarbin-api)

	AccessSecret  string // Required: HS256 secret for access tokens (>= 32 bytes)
	RefreshSecret string // Required: HS256 secret for refresh tokens, distinct from AccessSecret

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	MaxLoginAttempts  int           // Optional: failed logins before lockout (default: 5)
	LockoutDuration   time.Duration // Optional: how long a lockout holds (default: 15m)
	MaxSessions       int           // Optional: live refresh-token slots per account (default: 5)
	LoginHistoryLimit int           // Optional: login audit records kept per account (default: 10)

	DatabaseFile string // Optional: path to SQLite database file (default: ./amarbin.db)
	RedisAddr    string // Optional: revocation cache address; empty runs without a blacklist

	AdminEmail    string // Optional: first-admin seed, created at startup if absent
	AdminPassword string // Optional: first-admin password, required with AdminEmail
	AdminName     string // Optional: first-admin display name (default: Administrator)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer: getEnvOrDefault("TOKEN_ISSUER", "amarbin-api"),

		AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),

		MaxLoginAttempts:  getEnvIntOrDefault("MAX_LOGIN_ATTEMPTS", 5),
		LockoutDuration:   getEnvDurationOrDefault("LOCKOUT_DURATION", 15*time.Minute),
		MaxSessions:       getEnvIntOrDefault("MAX_SESSIONS", 5),
		LoginHistoryLimit: getEnvIntOrDefault("LOGIN_HISTORY_LIMIT", 10),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "amarbin.db"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate catches configurations the service must not start with. Weak or
// shared signing secrets would undermine every token the service ever
// issues, so they are startup failures, not warnings.
func (c Config) Validate() error {
	if c.AccessSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("REFRESH_TOKEN_SECRET is required")
	}
	// Same floor the token signers enforce; catching it here turns a runtime
	// construction error into a readable startup failure.
	if len(c.AccessSecret) < jwtx.MinSecretBytes {
		return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d bytes", jwtx.MinSecretBytes)
	}
	if len(c.RefreshSecret) < jwtx.MinSecretBytes {
		return fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d bytes", jwtx.MinSecretBytes)
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
