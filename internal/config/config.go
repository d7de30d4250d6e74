// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"
)

var ErrMissingGatewayCredentials = errors.New("CASHFREE_CLIENT_ID and CASHFREE_CLIENT_SECRET are required")

type Config struct {
	Port        string
	PostgresURL string
	LogLevel    string
	LogPretty   bool
	CORSOrigins []string

	Gateway GatewayConfig
	Sweep   SweepConfig
	SMTP    SMTPConfig
	Auth    AuthConfig
}

type GatewayConfig struct {
	ClientID                string
	ClientSecret            string
	WebhookSecret           string
	BaseURL                 string
	OrdersAPIVersion        string
	SubscriptionsAPIVersion string
	ReturnURL               string
	NotifyURL               string
	Timeout                 time.Duration
	MaxRetries              int
	RetryBaseDelay          time.Duration
}

type SweepConfig struct {
	Delay    time.Duration // spacing between gateway calls
	Schedule string        // cron spec; empty disables the scheduled sweep
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	FromName      string
	UseSSL        bool
	RequireTLS    bool
	OperatorEmail string
	AppName       string
	AppBaseURL    string
}

type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	CookieSecure      bool
}

// Load reads configuration from environment variables, after loading a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := getEnv("CASHFREE_BASE_URL", "")
	if baseURL == "" {
		baseURL = sandboxBaseURL
		if strings.EqualFold(getEnv("CASHFREE_ENV", "sandbox"), "production") {
			baseURL = productionBaseURL
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", false),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
		Gateway: GatewayConfig{
			ClientID:                getEnv("CASHFREE_CLIENT_ID", ""),
			ClientSecret:            getEnv("CASHFREE_CLIENT_SECRET", ""),
			WebhookSecret:           getEnv("CASHFREE_WEBHOOK_SECRET", ""),
			BaseURL:                 strings.TrimRight(baseURL, "/"),
			OrdersAPIVersion:        getEnv("CASHFREE_ORDERS_API_VERSION", "2023-08-01"),
			SubscriptionsAPIVersion: getEnv("CASHFREE_SUBSCRIPTIONS_API_VERSION", "2025-01-01"),
			ReturnURL:               getEnv("CASHFREE_RETURN_URL", ""),
			NotifyURL:               getEnv("CASHFREE_NOTIFY_URL", ""),
			Timeout:                 getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),
			MaxRetries:              getEnvAsInt("GATEWAY_MAX_RETRIES", 2),
			RetryBaseDelay:          getEnvAsDuration("GATEWAY_RETRY_BASE_DELAY", 500*time.Millisecond),
		},
		Sweep: SweepConfig{
			Delay:    getEnvAsDuration("SWEEP_DELAY", 300*time.Millisecond),
			Schedule: getEnv("SWEEP_SCHEDULE", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Username:      getEnv("SMTP_USERNAME", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			From:          getEnv("SMTP_FROM", ""),
			FromName:      getEnv("SMTP_FROM_NAME", "PMS Portal"),
			UseSSL:        getEnvAsBool("SMTP_USE_SSL", false),
			RequireTLS:    getEnvAsBool("SMTP_REQUIRE_TLS", true),
			OperatorEmail: getEnv("OPERATOR_EMAIL", ""),
			AppName:       getEnv("APP_NAME", "PMS Portal"),
			AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenTTL:          getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			OTPTTL:            getEnvAsDuration("OTP_TTL", 5*time.Minute),
			OTPMaxAttempts:    getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
			CookieSecure:      getEnvAsBool("COOKIE_SECURE", true),
		},
	}

	if cfg.Gateway.WebhookSecret == "" {
		cfg.Gateway.WebhookSecret = cfg.Gateway.ClientSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that makes the service unusable.
func (c *Config) Validate() error {
	if c.Gateway.ClientID == "" || c.Gateway.ClientSecret == "" {
		return ErrMissingGatewayCredentials
	}
	if c.Sweep.Delay < 0 {
		return fmt.Errorf("SWEEP_DELAY must not be negative, got %s", c.Sweep.Delay)
	}
	if c.Gateway.MaxRetries < 0 {
		return fmt.Errorf("GATEWAY_MAX_RETRIES must not be negative, got %d", c.Gateway.MaxRetries)
	}
	for _, origin := range c.CORSOrigins {
		// credentialed CORS needs exact origins
		if strings.Contains(origin, "*") {
			return fmt.Errorf("CORS_ORIGINS must list exact origins, got %q", origin)
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
