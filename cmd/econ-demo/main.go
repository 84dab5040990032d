package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	mem "econledger/adapters/memory"
	ws "econledger/adapters/websocket"
	"econledger/core"
	"econledger/engine"
	"econledger/leaderboard"
	"econledger/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()
	ledger := mem.New()
	bus := engine.NewBus(engine.DispatchAsync)
	svc := engine.NewEconomyService(ledger, leaderboard.NewSkipList(), bus, 0)
	hub := realtime.NewHub()

	// Forward committed transactions to WebSocket clients
	svc.OnSuccess(hub.Broadcast)

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/top", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		writeJSON(w, svc.Top(limit, offset))
	})
	http.HandleFunc("/players/", func(w http.ResponseWriter, r *http.Request) {
		// routes: /players/{name}/deposit?amount=50, /players/{name}/withdraw?amount=50, GET /players/{name}
		parts := split(r.URL.Path, '/')
		if len(parts) < 2 {
			http.NotFound(w, r)
			return
		}
		name := core.Name(parts[1])
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 3 {
				amount, _ := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
				var balance int64
				var err error
				switch parts[2] {
				case "deposit":
					balance, err = svc.AddBalance(ctx, name, amount)
				case "withdraw":
					balance, err = svc.ReduceBalance(ctx, name, amount)
				default:
					http.NotFound(w, r)
					return
				}
				writeJSON(w, map[string]any{"balance": balance, "err": errString(err)})
				return
			}
		case http.MethodGet:
			res := <-svc.ResolveBalance(ctx, name)
			if res.Err != nil {
				http.Error(w, res.Err.Error(), 500)
				return
			}
			writeJSON(w, map[string]any{"player": res.Name, "balance": res.Balance, "found": res.Found})
			return
		}
		http.NotFound(w, r)
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func split(p string, sep rune) []string {
	var parts []string
	current := make([]rune, 0, len(p))

	for _, r := range p {
		if r == sep {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, r)
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}
