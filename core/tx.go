package core

import "time"

// TxType enumerates balance mutations.
type TxType string

const (
	TxSet    TxType = "set"
	TxAdd    TxType = "add"
	TxReduce TxType = "reduce"
	TxPay    TxType = "pay"
)

// Transaction is an immutable record of one mutation attempt. It exists for
// the duration of the submit/success notification cycle and is not persisted.
type Transaction struct {
	Type TxType    `json:"type"`
	Time time.Time `json:"time"`

	Player Name `json:"player"`
	// Counterparty is set on pay legs: the receiver on the payer's record and
	// the payer on the receiver's record.
	Counterparty Name `json:"counterparty,omitempty"`

	Old    int64 `json:"old_balance"`
	New    int64 `json:"new_balance"`
	Amount int64 `json:"amount"` // New - Old
}

func NewTransaction(typ TxType, player Name, old, newBalance int64) Transaction {
	return Transaction{
		Type:   typ,
		Time:   time.Now().UTC(),
		Player: player,
		Old:    old,
		New:    newBalance,
		Amount: newBalance - old,
	}
}

func NewPayLeg(player, counterparty Name, old, newBalance int64) Transaction {
	tx := NewTransaction(TxPay, player, old, newBalance)
	tx.Counterparty = counterparty
	return tx
}
