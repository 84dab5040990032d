package engine

import (
	"sync"

	"econledger/core"
	"econledger/leaderboard"
)

// boardGate keeps leaderboard refreshes in commit order. Sequences are issued
// while the account's key lock is held, so they follow commit order; apply runs
// after the lock is released and discards refreshes that a later commit has
// already superseded. The board would otherwise be left holding an older
// balance whenever two commits on one account raced to Update.
type boardGate struct {
	mu      sync.Mutex
	issued  map[core.Name]uint64
	applied map[core.Name]uint64
}

func newBoardGate() *boardGate {
	return &boardGate{
		issued:  map[core.Name]uint64{},
		applied: map[core.Name]uint64{},
	}
}

// next issues the sequence for a commit. Callers must hold the account's key
// lock so sequence order matches commit order.
func (g *boardGate) next(name core.Name) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued[name]++
	return g.issued[name]
}

// apply refreshes the board unless a newer commit already has. The mutex is
// held across Update so a stale refresh can never slip in behind the check.
func (g *boardGate) apply(board leaderboard.Board, name core.Name, balance int64, seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq <= g.applied[name] {
		return
	}
	g.applied[name] = seq
	board.Update(name, balance)
}
