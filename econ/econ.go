// Package econ is the batteries-included entry point: a small builder that
// assembles an engine.EconomyService from options, defaulting to in-memory
// storage and an in-process skiplist leaderboard.
package econ

import (
	"time"

	mem "econledger/adapters/memory"
	"econledger/engine"
	"econledger/leaderboard"
	"econledger/realtime"
)

// Option configures the economy service builder.
type Option func(*config)

type config struct {
	ledger  engine.Ledger
	board   leaderboard.Board
	mode    engine.DispatchMode
	hub     *realtime.Hub
	timeout time.Duration
}

// WithLedger sets the persistence adapter.
func WithLedger(l engine.Ledger) Option { return func(c *config) { c.ledger = l } }

// WithBoard sets the leaderboard implementation.
func WithBoard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// WithDispatchMode selects sync or async success dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive every committed transaction.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithResolveTimeout overrides the async lookup gateway timeout.
func WithResolveTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// New builds a configured EconomyService. If not provided, defaults are used:
//   - ledger: in-memory
//   - leaderboard: in-process skiplist
//   - dispatch: async
func New(opts ...Option) *engine.EconomyService {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.ledger == nil {
		cfg.ledger = mem.New()
	}
	if cfg.board == nil {
		cfg.board = leaderboard.NewSkipList()
	}
	bus := engine.NewBus(cfg.mode)
	svc := engine.NewEconomyService(cfg.ledger, cfg.board, bus, cfg.timeout)
	if cfg.hub != nil {
		// Bridge committed transactions to realtime subscribers.
		svc.OnSuccess(cfg.hub.Broadcast)
	}
	return svc
}
