package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"econledger/core"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// BoardKey is the sorted-set key used by the leaderboard board.
	BoardKey string
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		BoardKey:     "leaderboard:balances",
	}
}

// Store implements the engine.Ledger interface using Redis as the backend.
// Data structure:
// - account:{name}:balance -> int64
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed ledger with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Client exposes the underlying connection so a ZSetBoard can share it.
func (s *Store) Client() *redis.Client {
	return s.client
}

func balanceKey(name core.Name) string {
	return fmt.Sprintf("account:%s:balance", name)
}

// Lua script enforcing the non-negative invariant server-side, so a buggy or
// concurrent writer can never persist a negative balance.
var setBalanceScript = redis.NewScript(`
	local amount = tonumber(ARGV[1])
	if amount == nil or amount < 0 then
		return redis.error_reply('negative balance')
	end
	redis.call('SET', KEYS[1], amount)
	return amount
`)

// Get returns the balance, or core.ErrNotFound for unknown players.
func (s *Store) Get(ctx context.Context, name core.Name) (int64, error) {
	balance, err := s.client.Get(ctx, balanceKey(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// Set overwrites the balance, creating the account if needed.
func (s *Store) Set(ctx context.Context, name core.Name, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: balance cannot be negative", core.ErrInvalidAmount)
	}
	if err := setBalanceScript.Run(ctx, s.client, []string{balanceKey(name)}, amount).Err(); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

// All scans every account key and returns a balance snapshot.
func (s *Store) All(ctx context.Context) (map[core.Name]int64, error) {
	out := map[core.Name]int64{}
	iter := s.client.Scan(ctx, 0, "account:*:balance", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		name := nameFromKey(key)
		if name == "" {
			continue
		}
		balance, err := s.client.Get(ctx, key).Int64()
		if err != nil {
			continue // skip entries mutated mid-scan
		}
		out[core.Name(name)] = balance
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}
	return out, nil
}

// nameFromKey extracts {name} from account:{name}:balance.
func nameFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, "account:")
	if !ok {
		return ""
	}
	name, ok := strings.CutSuffix(rest, ":balance")
	if !ok {
		return ""
	}
	return name
}
