package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "cabbooking.db"
	defaultJWTAccessTTL       = "1h"
	defaultRefreshTTL         = "168h"
	defaultRecoveryTTL        = "15m"
	defaultKeepAliveInterval  = "5m"
	defaultResetRedirectURL   = "http://localhost:5173/admin/reset-password"
	defaultKafkaTopic         = "booking-events"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultRefreshTokenPepper = "change-me-refresh-pepper"
	defaultAPIBaseURL         = "http://localhost:8080"
)

type Config struct {
	AppEnv             string
	LogLevel           string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessTTL       time.Duration
	RefreshTTL         time.Duration
	RecoveryTTL        time.Duration
	RefreshTokenPepper string
	ResetRedirectURL   string
	DevMailer          bool
	KeepAliveInterval  time.Duration
	KafkaBrokers       []string
	KafkaTopic         string
	CORSAllowedOrigins []string
}

// ConsoleConfig configures cmd/adminctl.
type ConsoleConfig struct {
	AppEnv            string
	LogLevel          string
	APIBaseURL        string
	KeepAliveInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:             appEnv(),
		LogLevel:           strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		HTTPAddr:           strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr)),
		DatabaseURL:        strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL)),
		JWTSecret:          strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		RefreshTokenPepper: strings.TrimSpace(getEnv("REFRESH_TOKEN_PEPPER", defaultRefreshTokenPepper)),
		ResetRedirectURL:   strings.TrimSpace(getEnv("RESET_REDIRECT_URL", defaultResetRedirectURL)),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         strings.TrimSpace(getEnv("KAFKA_TOPIC", defaultKafkaTopic)),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	cfg.DevMailer = parseBoolEnv("DEV_MAILER", fmt.Sprint(!isProdLike(cfg.AppEnv)))

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TTL", defaultRefreshTTL); err != nil {
		return nil, err
	}
	if cfg.RecoveryTTL, err = parseDurationEnv("RECOVERY_TTL", defaultRecoveryTTL); err != nil {
		return nil, err
	}
	if cfg.KeepAliveInterval, err = parseDurationEnv("KEEPALIVE_INTERVAL", defaultKeepAliveInterval); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConsole() (*ConsoleConfig, error) {
	_ = godotenv.Load()

	cfg := &ConsoleConfig{
		AppEnv:     appEnv(),
		LogLevel:   strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		APIBaseURL: strings.TrimRight(strings.TrimSpace(getEnv("ADMIN_API_URL", defaultAPIBaseURL)), "/"),
	}

	var err error
	if cfg.KeepAliveInterval, err = parseDurationEnv("KEEPALIVE_INTERVAL", defaultKeepAliveInterval); err != nil {
		return nil, err
	}
	if cfg.KeepAliveInterval <= 0 {
		return nil, fmt.Errorf("KEEPALIVE_INTERVAL must be > 0")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("ADMIN_API_URL must not be empty")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TTL must be > 0")
	}
	if cfg.RecoveryTTL <= 0 {
		return fmt.Errorf("RECOVERY_TTL must be > 0")
	}
	if cfg.RecoveryTTL > cfg.RefreshTTL {
		return fmt.Errorf("RECOVERY_TTL must not exceed REFRESH_TTL")
	}
	if cfg.KeepAliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be > 0")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ResetRedirectURL == "" {
		return fmt.Errorf("RESET_REDIRECT_URL must not be empty")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenPepper, defaultRefreshTokenPepper) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_PEPPER must be set and not default")
		}
		if cfg.DevMailer {
			return fmt.Errorf("in prod/release DEV_MAILER must be disabled")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool { return isProdLike(c.AppEnv) }

func appEnv() string {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = strings.TrimSpace(os.Getenv("ENV"))
	}
	if env == "" {
		env = "dev"
	}
	return strings.ToLower(env)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
