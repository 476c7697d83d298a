package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType says which direction an entry moves the balance. The sign is
// carried by the type, Amount itself is always positive.
type EntryType string

const (
	EntryTypeDeposit    EntryType = "DEPOSIT"
	EntryTypeWithdrawal EntryType = "WITHDRAWAL"
)

// TransactionEntry is one immutable record of a balance change. Entries
// are append-only: once stored they are never updated or deleted.
//
// TransactionID is assigned by the store at append time and increases
// monotonically, so "timestamp DESC, transaction_id DESC" is a total,
// insertion-consistent order.
type TransactionEntry struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Type          EntryType       `json:"transaction_type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SignedAmount returns the amount with the sign implied by the entry type:
// positive for deposits, negative for withdrawals. The sum of signed
// amounts over an account's entries always equals its balance.
func (e TransactionEntry) SignedAmount() decimal.Decimal {
	if e.Type == EntryTypeWithdrawal {
		return e.Amount.Neg()
	}
	return e.Amount
}
