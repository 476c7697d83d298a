package interfaces

import (
	"context"

	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/shopspring/decimal"
)

// AccountStore is durable keyed storage for account records. The engine
// builds the full record (id, holder, balance, creation time); the store
// only persists it.
type AccountStore interface {
	// CreateAccount inserts a new account record.
	CreateAccount(ctx context.Context, account models.Account) error

	// GetAccount returns the account, or models.ErrAccountNotFound.
	// Inside an atomic unit the returned row is locked against
	// concurrent writers until the unit completes.
	GetAccount(ctx context.Context, accountID string) (models.Account, error)

	// SetBalance overwrites the account's balance. Returns
	// models.ErrAccountNotFound if the account does not exist.
	SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
}
