package econ

import (
	"context"
	"testing"

	mem "econledger/adapters/memory"
	"econledger/core"
	"econledger/engine"
	"econledger/realtime"
)

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	svc := New(
		WithRealtime(hub),
		WithLedger(mem.New()),
		WithDispatchMode(engine.DispatchSync),
	)
	defer svc.Close()

	sub := hub.Subscribe(1)

	balance, err := svc.AddBalance(context.Background(), "alice", 5)
	if err != nil || balance != 5 {
		t.Fatalf("add balance=%d err=%v", balance, err)
	}

	// realtime bridge should receive the committed transaction
	tx := <-sub.C
	if tx.Player != "alice" || tx.Type != core.TxAdd || tx.New != 5 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestDefaultLedgerAndBoard(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()
	ctx := context.Background()

	if _, err := svc.SetBalance(ctx, "bob", 300); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if _, err := svc.SetBalance(ctx, "carol", 100); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	balance, err := svc.Balance(ctx, "bob")
	if err != nil || balance != 300 {
		t.Fatalf("balance=%d err=%v", balance, err)
	}
	rank, ok := svc.Rank("bob")
	if !ok || rank != 1 {
		t.Fatalf("expected bob at rank 1, got %d ok=%v", rank, ok)
	}
}
