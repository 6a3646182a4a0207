package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NSQDAddr is optional; notifications are only logged when empty.
	NSQDAddr string

	StoragePath string
	LogLevel    string
	LogFormat   string

	// ExtensionPaymentWindow is how long a customer has to settle an extension once requested.
	ExtensionPaymentWindow time.Duration

	Reset ResetProfile
}

// ResetProfile groups every password-reset setting that differs between environments.
// Business code only ever sees this value, never APP_ENV.
type ResetProfile struct {
	CodeTTL     time.Duration
	IssueWindow time.Duration
	MaxIssues   int
	MaxAttempts int
	TokenTTL    time.Duration
	// ExposeCode echoes issued codes in API responses so flows can be exercised without a mailbox.
	ExposeCode bool
	// SwallowDeliveryErrors logs notifier failures instead of failing the request.
	SwallowDeliveryErrors bool
}

// ProductionResetProfile is the reset profile used when APP_ENV=prod.
func ProductionResetProfile() ResetProfile {
	return ResetProfile{
		CodeTTL:     10 * time.Minute,
		IssueWindow: time.Hour,
		MaxIssues:   3,
		MaxAttempts: 5,
		TokenTTL:    30 * time.Minute,
	}
}

// DevelopmentResetProfile is the reset profile used outside production.
func DevelopmentResetProfile() ResetProfile {
	return ResetProfile{
		CodeTTL:               10 * time.Minute,
		IssueWindow:           5 * time.Minute,
		MaxIssues:             10,
		MaxAttempts:           5,
		TokenTTL:              30 * time.Minute,
		ExposeCode:            true,
		SwallowDeliveryErrors: true,
	}
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	cfg := &Config{}
	var err error

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Bcrypt cost for password hashing (default: 12)
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.NSQDAddr = getEnv("NSQD_ADDR", "")
	cfg.StoragePath = getEnv("STORAGE_PATH", "./data")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "")
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction {
			cfg.LogFormat = "json"
		}
	}

	if cfg.ExtensionPaymentWindow, err = getEnvAsDuration("EXTENSION_PAYMENT_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Reset, err = loadResetProfile(cfg.IsProduction); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadResetProfile picks the profile for the environment and applies explicit overrides.
func loadResetProfile(isProduction bool) (ResetProfile, error) {
	p := DevelopmentResetProfile()
	if isProduction {
		p = ProductionResetProfile()
	}

	var err error
	if p.CodeTTL, err = getEnvAsDuration("RESET_CODE_TTL", p.CodeTTL); err != nil {
		return p, err
	}
	if p.IssueWindow, err = getEnvAsDuration("RESET_ISSUE_WINDOW", p.IssueWindow); err != nil {
		return p, err
	}
	if p.MaxIssues, err = getEnvAsInt("RESET_MAX_ISSUES", p.MaxIssues); err != nil {
		return p, fmt.Errorf("invalid RESET_MAX_ISSUES: %w", err)
	}
	if p.MaxAttempts, err = getEnvAsInt("RESET_MAX_ATTEMPTS", p.MaxAttempts); err != nil {
		return p, fmt.Errorf("invalid RESET_MAX_ATTEMPTS: %w", err)
	}
	return p, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values such as "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}
