package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment identifies the deploy environment. It is resolved exactly
// once at process start and namespaces every identity cookie, so one
// shared domain can carry dev, staging, and prod sessions side by side.
type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// ParseEnvironment validates an environment name.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvStaging, EnvProd:
		return Environment(s), nil
	}
	return "", fmt.Errorf("unknown environment %q (want dev, staging or prod)", s)
}

// CookiePrefix returns the namespace prepended to every identity cookie
// written or read under this environment.
func (e Environment) CookiePrefix() string {
	return string(e)
}

// Config holds application configuration.
type Config struct {
	// Deploy environment (cookie namespace)
	Environment Environment

	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Billing service (subscription oracle)
	BillingBaseURL string
	BillingTimeout time.Duration

	// Gate decision cache
	GateCacheTTL      time.Duration
	GateCacheCapacity int

	// Collaborator call timeout (session resolver, profile loader)
	BackendTimeout time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// Rate limiting
	RateLimit RateLimitConfig

	// Security headers
	SecurityHeaders SecurityHeadersConfig
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled               bool
	AuthRequestsPerWindow int
	AuthWindowMinutes     int
}

// SecurityHeadersConfig holds security header configuration.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnv("APP_ENV", "dev"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: env,

		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "gymgate"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "gymgate"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		// Billing
		BillingBaseURL: getEnv("BILLING_BASE_URL", ""),
		BillingTimeout: getEnvDuration("BILLING_TIMEOUT", 2*time.Second),

		// Decision cache: tens of seconds keeps role and subscription
		// changes from being masked for long.
		GateCacheTTL:      getEnvDuration("GATE_CACHE_TTL", 30*time.Second),
		GateCacheCapacity: getEnvInt("GATE_CACHE_CAPACITY", 4096),

		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 3*time.Second),

		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnvBool("COOKIE_SECURE", env == EnvProd),

		RateLimit: RateLimitConfig{
			Enabled:               getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerWindow: getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 30),
			AuthWindowMinutes:     getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 0),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "0"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "no-referrer"),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GateCacheTTL <= 0 {
		return nil, fmt.Errorf("GATE_CACHE_TTL must be positive")
	}
	if cfg.GateCacheCapacity <= 0 {
		return nil, fmt.Errorf("GATE_CACHE_CAPACITY must be positive")
	}

	return cfg, nil
}

// HasBilling returns true if a billing service is configured.
func (c *Config) HasBilling() bool {
	return c.BillingBaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
