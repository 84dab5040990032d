package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"econledger/core"
)

func TestStorePersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")

	store, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Set(context.Background(), "alice", 150); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(context.Background(), "bob", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// ensure file written
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s", path)
	}

	// reload
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	balance, err := reloaded.Get(context.Background(), "alice")
	if err != nil || balance != 150 {
		t.Fatalf("get alice: balance=%d err=%v", balance, err)
	}
	// zero balance survives a reload as a recorded account
	balance, err = reloaded.Get(context.Background(), "bob")
	if err != nil || balance != 0 {
		t.Fatalf("get bob: balance=%d err=%v", balance, err)
	}
	if _, err := reloaded.Get(context.Background(), "carol"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsNegative(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), "alice", -5); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	all, err := store.All(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("rejected write must not persist: %v %v", all, err)
	}
}
