package config

import (
	"fmt"
	"time"
)

// LoadProfile returns the named deployment profile with environment variable
// overrides applied on top.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()

	switch name {
	case "development":
		cfg.Environment = EnvDevelopment
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	case "testing":
		cfg.Environment = EnvTesting
		cfg.Storage.Adapter = "memory"
		cfg.Logging.Level = "warn"
	case "staging":
		cfg.Environment = EnvStaging
		cfg.Server.CORSOrigin = ""
		cfg.Security.EnableRateLimit = true
	case "production":
		cfg.Environment = EnvProduction
		cfg.Server.CORSOrigin = ""
		cfg.Security.EnableRateLimit = true
		cfg.Security.RateLimit.RequestsPerMinute = 120
		cfg.Security.RateLimit.BurstSize = 20
		cfg.Server.ShutdownTimeout = 60 * time.Second
	default:
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	cfg.Profile = name

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
