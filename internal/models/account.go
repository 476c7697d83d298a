package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the current state of one ledger account. Balance is a
// derived cache of the account's entry sum; only the ledger engine may
// change it.
type Account struct {
	AccountID  string          `json:"account_id"`
	HolderName string          `json:"account_holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}
