package engine

import (
	"context"

	"econledger/core"
)

// Ledger abstracts persistence for account balances. Implementations must
// return core.ErrNotFound for unknown players (distinct from balance 0) and
// core.ErrInvalidAmount for negative balances. Per-account serialization is
// handled above the Ledger by the service's keyed locks; implementations only
// need each Get/Set to be individually atomic.
type Ledger interface {
	Get(ctx context.Context, name core.Name) (int64, error)
	Set(ctx context.Context, name core.Name, amount int64) error
	// All returns a snapshot of every recorded account, used to seed the
	// leaderboard at startup.
	All(ctx context.Context) (map[core.Name]int64, error)
}
