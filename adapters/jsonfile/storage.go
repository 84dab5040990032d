package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"econledger/core"
)

// Store persists all balances to a single JSON file.
// Suitable for demos and small single-node servers.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.Name]entry
}

type entry struct {
	Balance int64     `json:"balance"`
	Updated time.Time `json:"updated"`
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.Name]entry{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]entry
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.Name(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]entry, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(_ context.Context, name core.Name) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[name]
	if !ok {
		return 0, core.ErrNotFound
	}
	return e.Balance, nil
}

func (s *Store) Set(_ context.Context, name core.Name, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: balance cannot be negative", core.ErrInvalidAmount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = entry{Balance: amount, Updated: time.Now().UTC()}
	return s.persist()
}

func (s *Store) All(_ context.Context) (map[core.Name]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[core.Name]int64, len(s.data))
	for k, v := range s.data {
		out[k] = v.Balance
	}
	return out, nil
}
