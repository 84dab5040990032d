package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestClient_BalanceOpsAndHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api", WithAPIKey("k1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()

	balance, err := client.SetBalance(ctx, "alice", 100)
	if err != nil || balance != 100 {
		t.Fatalf("set balance got %d err=%v", balance, err)
	}

	balance, err = client.Deposit(ctx, "alice", 50)
	if err != nil || balance != 150 {
		t.Fatalf("deposit got %d err=%v", balance, err)
	}

	balance, err = client.Withdraw(ctx, "alice", 25)
	if err != nil || balance != 125 {
		t.Fatalf("withdraw got %d err=%v", balance, err)
	}

	pb, err := client.Balance(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if pb.Player != "alice" || pb.Balance != 125 || !pb.Found {
		t.Fatalf("unexpected balance: %+v", pb)
	}

	pr, err := client.Rank(ctx, "alice")
	if err != nil || pr.Rank != 1 || !pr.Ranked {
		t.Fatalf("rank: %+v err=%v", pr, err)
	}

	remaining, err := client.Pay(ctx, "alice", "bob", 25)
	if err != nil || remaining != 100 {
		t.Fatalf("pay got %d err=%v", remaining, err)
	}

	entries, err := client.Top(ctx, 10, 0)
	if err != nil || len(entries) != 1 || entries[0].Name != "alice" {
		t.Fatalf("top: %+v err=%v", entries, err)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_EmptyPlayerRejected(t *testing.T) {
	client, err := NewClient("http://localhost:1/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Balance(context.Background(), " "); err != ErrEmptyPlayer {
		t.Fatalf("expected ErrEmptyPlayer, got %v", err)
	}
	if _, err := client.Pay(context.Background(), "alice", "", 5); err != ErrEmptyPlayer {
		t.Fatalf("expected ErrEmptyPlayer, got %v", err)
	}
}

func TestClient_SubscribeTransactions(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	txs, err := client.SubscribeTransactions(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case tx := <-txs:
		if tx.Type != "pay" || tx.Player != "alice" {
			t.Fatalf("unexpected transaction: %+v", tx)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for transaction")
	}
}

// test server implementing the minimal API surface expected by the SDK.
func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","checks":{"storage":"ok"}}`))
	})
	mux.HandleFunc("/api/top", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entries":[{"name":"alice","balance":100}]}`))
	})
	mux.HandleFunc("/api/pay", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance":100}`))
	})
	mux.HandleFunc("/api/players/", func(w http.ResponseWriter, r *http.Request) {
		// /api/players/{name}[/balance|/deposit|/withdraw|/rank]
		path := r.URL.Path[len("/api/players/"):]
		parts := strings.Split(path, "/")
		if len(parts) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		name := parts[0]
		w.Header().Set("Content-Type", "application/json")
		if len(parts) == 1 && r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"player":"` + name + `","balance":125,"found":true}`))
			return
		}
		if len(parts) >= 2 && r.Method == http.MethodGet && parts[1] == "rank" {
			_, _ = w.Write([]byte(`{"rank":1,"ranked":true}`))
			return
		}
		if len(parts) >= 2 && r.Method == http.MethodPost {
			switch parts[1] {
			case "balance":
				_, _ = w.Write([]byte(`{"balance":100}`))
			case "deposit":
				_, _ = w.Write([]byte(`{"balance":150}`))
			case "withdraw":
				_, _ = w.Write([]byte(`{"balance":125}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	upgrader := websocket.Upgrader{}
	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(Transaction{Type: "pay", Player: "alice", Counterparty: "bob", Old: 125, New: 100, Amount: -25})
	})

	return httptest.NewServer(mux)
}
