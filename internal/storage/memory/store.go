package memory

import (
	"context"
	"sort"
	"sync"

	interfaces "github.com/krishshaw418/Banking-MCP-Server/internal/interfaces"
	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory implementation of interfaces.Store, used
// by tests and local development. A single mutex guards all state; the
// transaction-bound view handed to Atomically works on the unlocked
// internals while that mutex is held, and a snapshot taken at the start
// of the unit restores everything on abort.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	entries  []models.TransactionEntry
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]models.Account),
		nextID:   1,
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccountLocked(account)
}

func (m *MemoryStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getAccountLocked(accountID)
}

func (m *MemoryStore) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setBalanceLocked(accountID, balance)
}

func (m *MemoryStore) AppendEntry(ctx context.Context, entry models.TransactionEntry) (models.TransactionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendEntryLocked(entry)
}

func (m *MemoryStore) ListEntries(ctx context.Context, accountID string, limit int) ([]models.TransactionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listEntriesLocked(accountID, limit)
}

// Atomically holds the store mutex for the whole unit, so the function
// sees and produces a consistent state. On a non-nil error the snapshot
// taken up front is restored, leaving no trace of the unit.
func (m *MemoryStore) Atomically(ctx context.Context, fn func(tx interfaces.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapAccounts := make(map[string]models.Account, len(m.accounts))
	for id, acct := range m.accounts {
		snapAccounts[id] = acct
	}
	snapEntries := len(m.entries)
	snapNextID := m.nextID

	if err := fn(&txView{store: m}); err != nil {
		m.accounts = snapAccounts
		m.entries = m.entries[:snapEntries]
		m.nextID = snapNextID
		return err
	}
	return nil
}

func (m *MemoryStore) createAccountLocked(account models.Account) error {
	m.accounts[account.AccountID] = account
	return nil
}

func (m *MemoryStore) getAccountLocked(accountID string) (models.Account, error) {
	acct, exists := m.accounts[accountID]
	if !exists {
		return models.Account{}, models.ErrAccountNotFound
	}
	return acct, nil
}

func (m *MemoryStore) setBalanceLocked(accountID string, balance decimal.Decimal) error {
	acct, exists := m.accounts[accountID]
	if !exists {
		return models.ErrAccountNotFound
	}
	acct.Balance = balance
	m.accounts[accountID] = acct
	return nil
}

func (m *MemoryStore) appendEntryLocked(entry models.TransactionEntry) (models.TransactionEntry, error) {
	entry.TransactionID = m.nextID
	m.nextID++
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MemoryStore) listEntriesLocked(accountID string, limit int) ([]models.TransactionEntry, error) {
	var result []models.TransactionEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}

	// Newest first, ties broken by descending id (insertion order).
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].TransactionID > result[j].TransactionID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// txView is the transaction-bound face of the store inside Atomically.
// The outer call already holds the mutex, so it goes straight to the
// unlocked internals.
type txView struct {
	store *MemoryStore
}

func (t *txView) CreateAccount(ctx context.Context, account models.Account) error {
	return t.store.createAccountLocked(account)
}

func (t *txView) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	return t.store.getAccountLocked(accountID)
}

func (t *txView) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	return t.store.setBalanceLocked(accountID, balance)
}

func (t *txView) AppendEntry(ctx context.Context, entry models.TransactionEntry) (models.TransactionEntry, error) {
	return t.store.appendEntryLocked(entry)
}

func (t *txView) ListEntries(ctx context.Context, accountID string, limit int) ([]models.TransactionEntry, error) {
	return t.store.listEntriesLocked(accountID, limit)
}

// Atomically on a transaction-bound view just runs fn in the enclosing
// unit.
func (t *txView) Atomically(ctx context.Context, fn func(tx interfaces.Store) error) error {
	return fn(t)
}

// Compile-time checks: both faces satisfy the Store contract.
var (
	_ interfaces.Store = (*MemoryStore)(nil)
	_ interfaces.Store = (*txView)(nil)
)
