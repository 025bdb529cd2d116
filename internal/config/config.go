// Package config loads and validates the platform configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the PMP_ prefix (e.g., PMP_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments.
//
// The JWT settings are an exception to the prefix rule: they are read from the
// unprefixed names JWT_VALID_ISSUER, JWT_VALID_AUDIENCE, JWT_ISSUER_SIGNING_KEY
// and ACCESS_TOKEN_EXPIRATION_MINUTES because they are injected by infrastructure
// tooling that treats them as generic secret names. Each of them may alternatively
// be supplied as <NAME>_FILE pointing at a file that contains the value (the
// docker-secrets convention). Missing JWT settings are a startup error, never a
// per-request one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// JWT is populated from the unprefixed environment contract, not from YAML.
	JWT JWTConfig `mapstructure:"-"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// RedisConfig holds the optional Redis connection used for the refresh-token
// store and the login rate limiter. When disabled, both fall back to their
// Postgres / in-memory counterparts.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds the token signing and validation settings. All four fields
// are required; Load fails when any of them is absent.
type JWTConfig struct {
	ValidIssuer   string
	ValidAudience string
	SigningKey    string
	// AccessTokenExpiration is the configured lifetime of freshly minted
	// access tokens (ACCESS_TOKEN_EXPIRATION_MINUTES).
	AccessTokenExpiration time.Duration
}

// SecurityConfig holds CORS and rate limiting configuration
type SecurityConfig struct {
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimiting RateLimitConfig `mapstructure:"rate_limiting"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds the Prometheus side-channel settings
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested structs during Unmarshal.
// viper.BindEnv only errors when called with zero keys; since every key here is a non-empty
// hardcoded string, any error indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",

		// Redis
		"redis.enabled",
		"redis.addr",
		"redis.password",
		"redis.db",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.enabled",
		"telemetry.service_name",
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/project-metadata-platform")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("PMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)
	cfg.Redis.Password = os.ExpandEnv(cfg.Redis.Password)

	jwtCfg, err := loadJWT()
	if err != nil {
		return nil, err
	}
	cfg.JWT = *jwtCfg

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadJWT reads the unprefixed JWT environment contract. Each variable may be
// supplied directly or via <NAME>_FILE path indirection.
func loadJWT() (*JWTConfig, error) {
	issuer, err := secretFromEnv("JWT_VALID_ISSUER")
	if err != nil {
		return nil, err
	}
	audience, err := secretFromEnv("JWT_VALID_AUDIENCE")
	if err != nil {
		return nil, err
	}
	signingKey, err := secretFromEnv("JWT_ISSUER_SIGNING_KEY")
	if err != nil {
		return nil, err
	}
	expirationRaw, err := secretFromEnv("ACCESS_TOKEN_EXPIRATION_MINUTES")
	if err != nil {
		return nil, err
	}

	minutes, err := strconv.Atoi(expirationRaw)
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRATION_MINUTES must be a positive integer, got %q", expirationRaw)
	}

	return &JWTConfig{
		ValidIssuer:           issuer,
		ValidAudience:         audience,
		SigningKey:            signingKey,
		AccessTokenExpiration: time.Duration(minutes) * time.Minute,
	}, nil
}

// secretFromEnv resolves NAME from the environment, falling back to reading the
// file named by NAME_FILE. Absence of both forms is a configuration error.
func secretFromEnv(name string) (string, error) {
	if value := os.Getenv(name); value != "" {
		return value, nil
	}

	if path := os.Getenv(name + "_FILE"); path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's own environment
		if err != nil {
			return "", fmt.Errorf("reading %s_FILE: %w", name, err)
		}
		value := strings.TrimSpace(string(raw))
		if value == "" {
			return "", fmt.Errorf("%s_FILE points at an empty file: %s", name, path)
		}
		return value, nil
	}

	return "", fmt.Errorf("required setting %s is missing: set %s or %s_FILE", name, name, name)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "project_metadata_platform")
	v.SetDefault("database.user", "pmp")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 200)
	v.SetDefault("security.rate_limiting.burst", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.service_name", "project-metadata-platform")
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when Redis is enabled")
	}

	if err := c.JWT.Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// Validate checks the JWT settings. The signing key length floor matches the
// HMAC-SHA-256 key size so tokens cannot be brute-forced through a short secret.
func (c *JWTConfig) Validate() error {
	if c.ValidIssuer == "" {
		return fmt.Errorf("JWT_VALID_ISSUER is required")
	}
	if c.ValidAudience == "" {
		return fmt.Errorf("JWT_VALID_AUDIENCE is required")
	}
	if c.SigningKey == "" {
		return fmt.Errorf("JWT_ISSUER_SIGNING_KEY is required")
	}
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("JWT_ISSUER_SIGNING_KEY must be at least 32 bytes, got %d", len(c.SigningKey))
	}
	if c.AccessTokenExpiration <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRATION_MINUTES must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
