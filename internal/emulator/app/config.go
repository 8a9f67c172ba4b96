package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/httpx"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

const (
	KeyStorageEphemeral  = "ephemeral"
	KeyStoragePersistent = "persistent"
)

type Config struct {
	ProjectID       string // Project the federation ID tokens are issued for (default: demo-project)
	APIKey          string // Optional: required ?key= on federation endpoints; empty accepts any key
	Issuer          string // Optional: iss claim (default: https://securetoken.google.com/<project>)
	BackendAudience string // Audience of backend access tokens (default: fedauth-backend)

	NumKeys        int           // Optional: number of signing keys (default: 3, min: 1, max: 10)
	KeyStorageMode string        // Optional: ephemeral or persistent (default: ephemeral)
	KeyGracePeriod time.Duration // Optional: how long retired keys keep verifying (default: 30 days)
	MasterKeyPath  string        // Optional: master key file sealing persistent keys
	DatabaseFile   string        // Optional: SQLite database file (default: ./fedauth-emulator.db)
	PepperFile     string        // Optional: password pepper file (default: under os.TempDir)

	IDTokenTTL      time.Duration // Optional: federation ID token lifetime (default: 1h)
	AccessTokenTTL  time.Duration // Optional: backend access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 30 days)
	CodeTTL         time.Duration // Optional: SMS code lifetime (default: 5m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: text)
	Port                 int           // HTTP server port (default: 9099)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// RateLimits are read from EMULATOR_RATELIMIT_{STRICT,MODERATE,LENIENT,PUBLIC}
	// as "requests/window[+burst]" and EMULATOR_RATELIMIT_DISABLED. The zero
	// value means httpx.DefaultLimits.
	RateLimits httpx.Limits

	envErrs []error
}

func LoadConfig() Config {
	cfg := Config{
		ProjectID:       getEnvOrDefault("EMULATOR_PROJECT_ID", "demo-project"),
		APIKey:          os.Getenv("EMULATOR_API_KEY"),
		Issuer:          os.Getenv("EMULATOR_ISSUER"),
		BackendAudience: getEnvOrDefault("EMULATOR_BACKEND_AUDIENCE", "fedauth-backend"),

		NumKeys:        getEnvIntOrDefault("EMULATOR_NUM_KEYS", 3),
		KeyStorageMode: getEnvOrDefault("EMULATOR_KEY_STORAGE_MODE", KeyStorageEphemeral),
		KeyGracePeriod: getEnvDurationOrDefault("EMULATOR_KEY_GRACE_PERIOD", jwtx.DefaultKeyGracePeriod),
		MasterKeyPath:  os.Getenv("EMULATOR_MASTER_KEY_PATH"),
		DatabaseFile:   getEnvOrDefault("EMULATOR_DATABASE_FILE", "fedauth-emulator.db"),
		PepperFile:     os.Getenv("EMULATOR_PEPPER_FILE"),

		IDTokenTTL:      getEnvDurationOrDefault("EMULATOR_ID_TOKEN_TTL", jwtx.DefaultIDTokenTTL),
		AccessTokenTTL:  getEnvDurationOrDefault("EMULATOR_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("EMULATOR_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		CodeTTL:         getEnvDurationOrDefault("EMULATOR_CODE_TTL", 5*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "text"),
		Port:                 getEnvIntOrDefault("PORT", 9099),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "https://securetoken.google.com/" + cfg.ProjectID
	}
	cfg.RateLimits, cfg.envErrs = httpx.LimitsFromEnv("EMULATOR_RATELIMIT_", httpx.DefaultLimits())

	return cfg
}

// Validate rejects settings the emulator cannot start with.
func (c Config) Validate() error {
	if err := errors.Join(c.envErrs...); err != nil {
		return err
	}
	switch c.KeyStorageMode {
	case KeyStorageEphemeral, KeyStoragePersistent:
	default:
		return fmt.Errorf("unknown key storage mode %q", c.KeyStorageMode)
	}
	if c.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	if c.BackendAudience == c.ProjectID {
		return fmt.Errorf("backend audience must differ from the project id")
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

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
