package config

import (
	"context"
	"fmt"
	"os"
)

// SecretStore resolves named secrets at startup. The environment-backed
// implementation is the default; swap in a vault-backed store in deployments
// that need one.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, def string) string
}

// EnvironmentSecretStore reads secrets from process environment variables.
type EnvironmentSecretStore struct{}

func NewEnvironmentSecretStore() *EnvironmentSecretStore {
	return &EnvironmentSecretStore{}
}

func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("secret %s not set", key)
	}
	return value, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(ctx context.Context, key, def string) string {
	value, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	return value
}

// LoadSecretsFromEnv fills secret-bearing config fields from the store when
// they are unset. Explicit config values win.
func LoadSecretsFromEnv(ctx context.Context, cfg *Config, store SecretStore) {
	if cfg.Storage.Redis.Password == "" {
		cfg.Storage.Redis.Password = store.GetWithDefault(ctx, "ECONLEDGER_REDIS_PASSWORD", "")
	}
	if cfg.Storage.SQL.DSN == "" {
		cfg.Storage.SQL.DSN = store.GetWithDefault(ctx, "ECONLEDGER_SQL_DSN", cfg.Storage.SQL.DSN)
	}
}
