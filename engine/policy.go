package engine

import (
	"context"
	"fmt"

	"econledger/core"
)

// Built-in submit observers for common server policies. Register with
// Bus.OnSubmit or EconomyService.OnSubmit.

// MaxBalancePolicy vetoes any transaction that would push an account above cap.
func MaxBalancePolicy(cap int64) SubmitObserver {
	return func(_ context.Context, tx core.Transaction) error {
		if tx.New > cap {
			return fmt.Errorf("balance %d exceeds cap %d", tx.New, cap)
		}
		return nil
	}
}

// FrozenAccountPolicy vetoes every mutation touching one of the given
// accounts. Names are normalized on construction.
func FrozenAccountPolicy(names ...core.Name) SubmitObserver {
	frozen := make(map[core.Name]struct{}, len(names))
	for _, n := range names {
		if normalized, err := core.NormalizeName(n); err == nil {
			frozen[normalized] = struct{}{}
		}
	}
	return func(_ context.Context, tx core.Transaction) error {
		if _, ok := frozen[tx.Player]; ok {
			return fmt.Errorf("account %s is frozen", tx.Player)
		}
		return nil
	}
}
