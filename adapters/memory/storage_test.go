package memory

import (
	"context"
	"errors"
	"testing"

	"econledger/core"
)

func TestMemoryStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "notch"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "notch", 100); err != nil {
		t.Fatal(err)
	}
	balance, err := s.Get(ctx, "notch")
	if err != nil || balance != 100 {
		t.Fatalf("got %v %v", balance, err)
	}

	// zero balance is distinct from not found
	if err := s.Set(ctx, "notch", 0); err != nil {
		t.Fatal(err)
	}
	if balance, err = s.Get(ctx, "notch"); err != nil || balance != 0 {
		t.Fatalf("got %v %v", balance, err)
	}

	if err := s.Set(ctx, "notch", -1); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestMemoryStoreAll(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)
	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all["a"] != 1 || all["b"] != 2 {
		t.Fatalf("unexpected snapshot: %v", all)
	}
}

func TestMemoryStoreAccountSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "a", 42)
	acct, err := s.Account(ctx, "a")
	if err != nil || acct.Balance != 42 || acct.Updated.IsZero() {
		t.Fatalf("got %+v %v", acct, err)
	}
	if _, err := s.Account(ctx, "b"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
