package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryRecorded is published after a ledger entry has been committed.
type EntryRecorded struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"transaction_type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
