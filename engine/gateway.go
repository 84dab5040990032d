package engine

import (
	"context"
	"errors"
	"time"

	"econledger/core"
)

// DefaultResolveTimeout bounds async lookups when the caller supplies no
// deadline of its own.
const DefaultResolveTimeout = 5 * time.Second

// Resolution is the single eventual outcome of an async balance lookup.
// Found is false (with a nil Err) when the player has no recorded account.
type Resolution struct {
	Name    core.Name `json:"name"`
	Balance int64     `json:"balance"`
	Found   bool      `json:"found"`
	Err     error     `json:"-"`
}

// Gateway resolves balances for accounts that may require a slow storage
// read (offline players) without blocking the caller. Each request yields
// exactly one Resolution on a buffered channel.
type Gateway struct {
	ledger  Ledger
	timeout time.Duration
}

func NewGateway(ledger Ledger, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Gateway{ledger: ledger, timeout: timeout}
}

// Resolve starts the lookup and returns immediately. The channel receives one
// value: the balance, a not-found marker, or core.ErrResolveTimeout when the
// deadline passes first. The result reflects ledger state at or after the
// time Resolve was called.
func (g *Gateway) Resolve(ctx context.Context, name core.Name) <-chan Resolution {
	out := make(chan Resolution, 1)

	normalized, err := core.NormalizeName(name)
	if err != nil {
		out <- Resolution{Name: name, Err: err}
		return out
	}

	go func() {
		lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		done := make(chan Resolution, 1)
		go func() {
			balance, err := g.ledger.Get(lookupCtx, normalized)
			switch {
			case errors.Is(err, core.ErrNotFound):
				done <- Resolution{Name: normalized}
			case err != nil:
				done <- Resolution{Name: normalized, Err: err}
			default:
				done <- Resolution{Name: normalized, Balance: balance, Found: true}
			}
		}()

		select {
		case res := <-done:
			out <- res
		case <-lookupCtx.Done():
			err := lookupCtx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				err = core.ErrResolveTimeout
			}
			out <- Resolution{Name: normalized, Err: err}
		}
	}()
	return out
}
