package core

import "errors"

// Domain errors. Mutation failures are always reported as values wrapping one
// of these sentinels so callers can branch with errors.Is.
var (
	// ErrNotFound marks a lookup for a player with no recorded account,
	// distinct from an account holding balance 0.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidAmount marks a non-positive amount where a positive one is
	// required, or an attempt to write a negative balance.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds marks a reduce or pay exceeding the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPlayerNotFound marks a synchronous mutation targeting an account that
	// cannot be resolved.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrCancelled marks a transaction vetoed by a submit observer.
	ErrCancelled = errors.New("transaction cancelled")

	// ErrResolveTimeout marks an async balance resolution exceeding its deadline.
	ErrResolveTimeout = errors.New("balance resolution timed out")
)
