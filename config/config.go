package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"econledger/adapters/redis"
	"econledger/adapters/sqlx"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"ECONLEDGER_ENV"`
	Profile     string      `json:"profile" env:"ECONLEDGER_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Leaderboard configuration
	Leaderboard LeaderboardConfig `json:"leaderboard"`

	// Lookup gateway configuration
	Gateway GatewayConfig `json:"gateway"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Security configuration
	Security SecurityConfig `json:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"ECONLEDGER_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"ECONLEDGER_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"ECONLEDGER_SERVER_CORS_ORIGIN"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"ECONLEDGER_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"ECONLEDGER_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"ECONLEDGER_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"ECONLEDGER_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"ECONLEDGER_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds ledger adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"ECONLEDGER_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
	File    FileConfig   `json:"file,omitempty"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"ECONLEDGER_STORAGE_FILE_PATH"`
}

// LeaderboardConfig selects the ranking backend. "memory" keeps an in-process
// skiplist; "redis" ranks through a ZSET on the storage Redis connection.
type LeaderboardConfig struct {
	Adapter string `json:"adapter" env:"ECONLEDGER_LEADERBOARD_ADAPTER"`
}

// GatewayConfig holds async balance lookup configuration
type GatewayConfig struct {
	ResolveTimeout time.Duration `json:"resolve_timeout" env:"ECONLEDGER_GATEWAY_RESOLVE_TIMEOUT"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"ECONLEDGER_LOG_LEVEL"`
	Format     string            `json:"format" env:"ECONLEDGER_LOG_FORMAT"`
	Output     string            `json:"output" env:"ECONLEDGER_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"ECONLEDGER_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
	APIKeys         []string        `json:"api_keys,omitempty" env:"ECONLEDGER_SECURITY_API_KEYS"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" env:"ECONLEDGER_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int           `json:"burst_size" env:"ECONLEDGER_SECURITY_RATE_LIMIT_BURST"`
	CleanupInterval   time.Duration `json:"cleanup_interval" env:"ECONLEDGER_SECURITY_RATE_LIMIT_CLEANUP"`
}

// Validate validates security settings.
func (s SecurityConfig) Validate() error {
	var errs []string
	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, "rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			errs = append(errs, "rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}
	for i, key := range s.APIKeys {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Sprintf("api_keys[%d] is empty", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	// Validate the path for security
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	// Open the file safely after validation
	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/econledger.json",
			},
		},
		Leaderboard: LeaderboardConfig{
			Adapter: "memory",
		},
		Gateway: GatewayConfig{
			ResolveTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
				CleanupInterval:   5 * time.Minute,
			},
			APIKeys: []string{},
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	// Validate environment
	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	// Validate server config
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	// Validate storage config
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	// Validate leaderboard config
	if err := c.Leaderboard.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("leaderboard config: %v", err))
	}

	// Validate gateway config
	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("gateway config: %v", err))
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	// Validate security config
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	// Redact sensitive information
	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
