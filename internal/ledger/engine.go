package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/krishshaw418/Banking-MCP-Server/internal/interfaces"
	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/krishshaw418/Banking-MCP-Server/internal/models/events"
	"github.com/shopspring/decimal"
)

const (
	// DefaultHistoryLimit is used by callers that received no explicit
	// limit for a history query.
	DefaultHistoryLimit = 10

	// MaxHistoryLimit bounds a single history response; larger limits
	// are clamped.
	MaxHistoryLimit = 100

	// DefaultLockWait bounds how long an operation waits for an
	// account's lock before failing as retryable.
	DefaultLockWait = 5 * time.Second

	// TopicEntryRecorded is the topic every post-commit entry event is
	// published to.
	TopicEntryRecorded = "entry_recorded"
)

// Engine applies deposits and withdrawals to accounts while keeping the
// balance consistent with the entry history. Every mutation acquires
// the account's lock, then commits the balance update together with its
// ledger entry in one atomic store unit. No other path writes balances
// or appends entries.
type Engine struct {
	store     interfaces.Store
	locks     *lockTable
	publisher interfaces.EventPublisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher makes the engine publish an event for every committed
// entry. Publishing is post-commit and best effort.
func WithPublisher(publisher interfaces.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

// WithLockWait overrides the bound on per-account lock waits.
func WithLockWait(maxWait time.Duration) Option {
	return func(e *Engine) {
		e.locks = newLockTable(maxWait)
	}
}

func NewEngine(store interfaces.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		locks: newLockTable(DefaultLockWait),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateAccount creates a new account. A positive initial balance is
// recorded as a DEPOSIT entry committed together with the account row,
// so a fresh account already satisfies the reconciliation invariant.
func (e *Engine) CreateAccount(ctx context.Context, holderName string, initialBalance decimal.Decimal) (models.Account, error) {
	if strings.TrimSpace(holderName) == "" {
		return models.Account{}, fmt.Errorf("%w: holder name must not be empty", models.ErrInvalidArgument)
	}
	if initialBalance.Sign() < 0 {
		return models.Account{}, fmt.Errorf("%w: initial balance must not be negative", models.ErrInvalidArgument)
	}
	if err := checkPrecision(initialBalance); err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		AccountID:  uuid.New().String(),
		HolderName: holderName,
		Balance:    initialBalance,
		CreatedAt:  time.Now().UTC(),
	}

	// The id is fresh so nobody can contend yet, but taking the lock
	// keeps account creation on the same serialization path as every
	// other mutation.
	release, err := e.locks.Acquire(ctx, account.AccountID)
	if err != nil {
		return models.Account{}, err
	}
	defer release()

	var entry models.TransactionEntry
	err = e.store.Atomically(ctx, func(tx interfaces.Store) error {
		if err := tx.CreateAccount(ctx, account); err != nil {
			return err
		}
		if initialBalance.Sign() > 0 {
			var err error
			entry, err = tx.AppendEntry(ctx, models.TransactionEntry{
				AccountID:    account.AccountID,
				Type:         models.EntryTypeDeposit,
				Amount:       initialBalance,
				BalanceAfter: initialBalance,
				Timestamp:    account.CreatedAt,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	if entry.TransactionID != 0 {
		e.publish(entry)
	}
	return account, nil
}

// Deposit adds amount to the account's balance and appends the matching
// DEPOSIT entry, atomically. Returns the new balance.
func (e *Engine) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.mutate(ctx, accountID, models.EntryTypeDeposit, amount)
}

// Withdraw subtracts amount from the account's balance and appends the
// matching WITHDRAWAL entry, atomically. Fails with
// models.ErrInsufficientFunds when amount exceeds the current balance,
// so a committed balance is never negative. Returns the new balance.
func (e *Engine) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.mutate(ctx, accountID, models.EntryTypeWithdrawal, amount)
}

// mutate is the shared read-modify-write path for deposits and
// withdrawals: acquire the account's lock, then read the balance,
// compute the new one and commit it with its entry in a single atomic
// unit. Any failure inside the unit rolls everything back and the lock
// is released either way.
func (e *Engine) mutate(ctx context.Context, accountID string, entryType models.EntryType, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: amount must be positive", models.ErrInvalidArgument)
	}
	if err := checkPrecision(amount); err != nil {
		return decimal.Decimal{}, err
	}

	release, err := e.locks.Acquire(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer release()

	var entry models.TransactionEntry
	err = e.store.Atomically(ctx, func(tx interfaces.Store) error {
		account, err := tx.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		var newBalance decimal.Decimal
		switch entryType {
		case models.EntryTypeDeposit:
			newBalance = account.Balance.Add(amount)
		case models.EntryTypeWithdrawal:
			if amount.GreaterThan(account.Balance) {
				return models.ErrInsufficientFunds
			}
			newBalance = account.Balance.Sub(amount)
		}

		if err := tx.SetBalance(ctx, accountID, newBalance); err != nil {
			return err
		}
		entry, err = tx.AppendEntry(ctx, models.TransactionEntry{
			AccountID:    accountID,
			Type:         entryType,
			Amount:       amount,
			BalanceAfter: newBalance,
			Timestamp:    time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	e.publish(entry)
	return entry.BalanceAfter, nil
}

// GetBalance returns the account snapshot without mutating anything.
func (e *Engine) GetBalance(ctx context.Context, accountID string) (models.Account, error) {
	return e.store.GetAccount(ctx, accountID)
}

// ListTransactions returns up to limit entries for the account, newest
// first. An explicit limit <= 0 is rejected; limits above
// MaxHistoryLimit are clamped.
func (e *Engine) ListTransactions(ctx context.Context, accountID string, limit int) ([]models.TransactionEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", models.ErrInvalidArgument)
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if _, err := e.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return e.store.ListEntries(ctx, accountID, limit)
}

// publish sends the committed entry to the configured publisher. The
// commit already happened, so a publish failure is logged and never
// surfaced to the caller.
func (e *Engine) publish(entry models.TransactionEntry) {
	if e.publisher == nil {
		return
	}
	event := events.EntryRecorded{
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		BalanceAfter:  entry.BalanceAfter,
		OccurredAt:    entry.Timestamp,
	}
	if err := e.publisher.Publish(TopicEntryRecorded, event); err != nil {
		log.Printf("failed to publish entry %d for account %s: %v", entry.TransactionID, entry.AccountID, err)
	}
}

// checkPrecision rejects amounts carrying more than two fractional
// digits. Rounding silently would let the stored sum drift from what
// the caller asked for.
func checkPrecision(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: amount must have at most two decimal places", models.ErrInvalidArgument)
	}
	return nil
}
