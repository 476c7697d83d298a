package interfaces

import (
	"context"

	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
)

// LedgerStore is durable append-only storage for transaction entries.
type LedgerStore interface {
	// AppendEntry stores a new entry and returns it with the
	// TransactionID the store assigned. Entries are never mutated or
	// removed after this call.
	AppendEntry(ctx context.Context, entry models.TransactionEntry) (models.TransactionEntry, error)

	// ListEntries returns up to limit entries for the account, newest
	// first: timestamp descending, ties broken by descending
	// TransactionID.
	ListEntries(ctx context.Context, accountID string, limit int) ([]models.TransactionEntry, error)
}

// Store combines both stores behind one atomic commit boundary. Every
// mutating engine operation runs inside Atomically so a balance update
// and its ledger entry become visible together or not at all.
type Store interface {
	AccountStore
	LedgerStore

	// Atomically runs fn against a transaction-bound view of the store.
	// If fn returns nil the unit commits; otherwise every write made
	// through tx is rolled back and the error is returned unchanged.
	Atomically(ctx context.Context, fn func(tx Store) error) error
}
