package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"econledger/core"
)

// Store is a concurrent in-memory Ledger implementation.
type Store struct {
	accounts sync.Map // map[core.Name]*record
}

type record struct {
	mu      sync.Mutex
	balance int64
	updated time.Time
}

func New() *Store { return &Store{} }

// Get returns the current balance, or core.ErrNotFound for unknown players.
func (s *Store) Get(_ context.Context, name core.Name) (int64, error) {
	v, ok := s.accounts.Load(name)
	if !ok {
		return 0, core.ErrNotFound
	}
	rec := v.(*record)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.balance, nil
}

// Set overwrites the balance, creating the account if needed.
func (s *Store) Set(_ context.Context, name core.Name, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: balance cannot be negative", core.ErrInvalidAmount)
	}
	rec := s.getOrCreate(name)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.balance = amount
	rec.updated = time.Now().UTC()
	return nil
}

// All snapshots every recorded account.
func (s *Store) All(_ context.Context) (map[core.Name]int64, error) {
	out := map[core.Name]int64{}
	s.accounts.Range(func(k, v any) bool {
		rec := v.(*record)
		rec.mu.Lock()
		out[k.(core.Name)] = rec.balance
		rec.mu.Unlock()
		return true
	})
	return out, nil
}

// Account returns a full snapshot including the last-modified timestamp.
func (s *Store) Account(_ context.Context, name core.Name) (core.Account, error) {
	v, ok := s.accounts.Load(name)
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	rec := v.(*record)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return core.Account{Name: name, Balance: rec.balance, Updated: rec.updated}, nil
}

func (s *Store) getOrCreate(name core.Name) *record {
	if v, ok := s.accounts.Load(name); ok {
		return v.(*record)
	}
	actual, _ := s.accounts.LoadOrStore(name, &record{updated: time.Now().UTC()})
	return actual.(*record)
}
