package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"econledger/core"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1)

	tx := core.NewTransaction(core.TxAdd, "bob", 0, 10)
	h.Broadcast(context.Background(), tx)

	received := <-sub.C
	if received.Player != "bob" || received.Type != core.TxAdd {
		t.Fatalf("unexpected transaction: %+v", received)
	}

	h.Unsubscribe(sub.ID)
	_, ok := <-sub.C
	if ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

func TestHubCountsDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1)

	ctx := context.Background()
	h.Broadcast(ctx, core.NewTransaction(core.TxAdd, "bob", 0, 10))
	h.Broadcast(ctx, core.NewTransaction(core.TxAdd, "bob", 10, 20))
	h.Broadcast(ctx, core.NewTransaction(core.TxAdd, "bob", 20, 30))

	if got := sub.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped, got %d", got)
	}

	// the buffered transaction is still deliverable
	received := <-sub.C
	if received.New != 10 {
		t.Fatalf("unexpected transaction: %+v", received)
	}
}

func TestMarshalJSON(t *testing.T) {
	tx := core.NewPayLeg("alice", "bob", 100, 60)
	b := MarshalJSON(tx)
	var out core.Transaction
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Counterparty != "bob" || out.Amount != -40 {
		t.Fatalf("unexpected transaction: %+v", out)
	}
}
