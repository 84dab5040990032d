package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database drivers selected via Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"econledger/core"
)

// Driver names accepted by New.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds SQL storage configuration.
type Config struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver string) Config {
	return Config{
		Driver:          driver,
		DSN:             "",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements the engine.Ledger interface on a SQL database.
// Schema: accounts(name TEXT PRIMARY KEY, balance BIGINT NOT NULL,
// updated_at TIMESTAMP NOT NULL).
type Store struct {
	db     *sqlx.DB
	driver string
}

// New opens a connection pool and verifies connectivity.
func New(config Config) (*Store, error) {
	if config.Driver != DriverPostgres && config.Driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported sql driver: %s", config.Driver)
	}
	db, err := sqlx.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db, driver: config.Driver}, nil
}

// NewWithDB creates a Store using an existing sqlx handle (useful for testing).
func NewWithDB(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the accounts table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS accounts (
		name VARCHAR(64) PRIMARY KEY,
		balance BIGINT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the balance, or core.ErrNotFound for unknown players.
func (s *Store) Get(ctx context.Context, name core.Name) (int64, error) {
	var balance int64
	query := s.db.Rebind(`SELECT balance FROM accounts WHERE name = ?`)
	err := s.db.QueryRowxContext(ctx, query, name).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// Set upserts the balance inside a transaction.
func (s *Store) Set(ctx context.Context, name core.Name, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: balance cannot be negative", core.ErrInvalidAmount)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	existsQuery := tx.Rebind(`SELECT EXISTS(SELECT 1 FROM accounts WHERE name = ?)`)
	if err := tx.QueryRowxContext(ctx, existsQuery, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to probe account: %w", err)
	}
	now := time.Now().UTC()
	if exists {
		update := tx.Rebind(`UPDATE accounts SET balance = ?, updated_at = ? WHERE name = ?`)
		if _, err := tx.ExecContext(ctx, update, amount, now, name); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
	} else {
		insert := tx.Rebind(`INSERT INTO accounts (name, balance, updated_at) VALUES (?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, name, amount, now); err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// All returns a balance snapshot of every account.
func (s *Store) All(ctx context.Context) (map[core.Name]int64, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT name, balance FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	out := map[core.Name]int64{}
	for rows.Next() {
		var name string
		var balance int64
		if err := rows.Scan(&name, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out[core.Name(name)] = balance
	}
	return out, rows.Err()
}
