package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	jsonfileAdapter "econledger/adapters/jsonfile"
	mem "econledger/adapters/memory"
	redisAdapter "econledger/adapters/redis"
	sqlxAdapter "econledger/adapters/sqlx"
	"econledger/api/httpapi"
	"econledger/config"
	"econledger/econ"
	"econledger/engine"
	"econledger/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Service *engine.EconomyService
	Handler http.Handler
	Server  *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Environment == config.EnvProduction {
		config.LoadSecretsFromEnv(ctx, cfg, config.NewEnvironmentSecretStore())
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideLedger(ctx context.Context, cfg *config.Config) (engine.Ledger, error) {
	return setupLedger(ctx, cfg)
}

func provideService(ctx context.Context, hub *realtime.Hub, ledger engine.Ledger, cfg *config.Config) (*engine.EconomyService, error) {
	opts := []econ.Option{
		econ.WithRealtime(hub),
		econ.WithLedger(ledger),
		econ.WithDispatchMode(engine.DispatchAsync),
		econ.WithResolveTimeout(cfg.Gateway.ResolveTimeout),
	}
	if cfg.Leaderboard.Adapter == "redis" {
		board, err := setupBoard(ledger, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, econ.WithBoard(board))
	}
	svc := econ.New(opts...)
	// warm the leaderboard from whatever the ledger already holds
	if err := svc.Seed(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func provideHandler(svc *engine.EconomyService, hub *realtime.Hub, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupLedger creates the appropriate ledger adapter based on configuration.
func setupLedger(ctx context.Context, cfg *config.Config) (engine.Ledger, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		return jsonfileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}

// setupBoard builds the Redis-backed leaderboard, sharing the storage
// connection when the ledger is itself Redis.
func setupBoard(ledger engine.Ledger, cfg *config.Config) (*redisAdapter.ZSetBoard, error) {
	if store, ok := ledger.(*redisAdapter.Store); ok {
		return redisAdapter.NewZSetBoard(store.Client(), cfg.Storage.Redis.BoardKey), nil
	}
	return redisAdapter.NewBoard(cfg.Storage.Redis)
}
