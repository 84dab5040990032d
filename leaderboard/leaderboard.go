package leaderboard

import "econledger/core"

// Entry is a read-only ranking projection of one account.
type Entry struct {
	Name    core.Name `json:"name"`
	Balance int64     `json:"balance"`
}

// Board abstracts a ranked view over the ledger: balance descending,
// name ascending on ties. An account enters the board on its first committed
// transaction and stays ranked (including at balance 0) until removed.
type Board interface {
	Update(name core.Name, balance int64)
	Remove(name core.Name)
	// Top returns at most limit entries starting at the given 0-based offset.
	Top(limit, offset int) []Entry
	// Rank returns the 1-based position of name, or false if unranked.
	Rank(name core.Name) (int, bool)
	Len() int
}
