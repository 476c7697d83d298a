package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	interfaces "github.com/krishshaw418/Banking-MCP-Server/internal/interfaces"
	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/shopspring/decimal"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so the same store code runs standalone and inside an atomic unit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements interfaces.Store on top of database/sql with
// the lib/pq driver. Atomically binds a copy of the store to a sql.Tx;
// inside a unit GetAccount takes a row lock (SELECT ... FOR UPDATE) so
// the storage layer backs up the engine's per-account serialization.
type PostgresStore struct {
	db   *sql.DB
	q    querier
	inTx bool
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (p *PostgresStore) CreateAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (account_id, account_holder_name, balance, created_at)
	VALUES ($1, $2, $3, $4)`

	_, err := p.q.ExecContext(ctx, query, account.AccountID, account.HolderName, account.Balance, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert account: %v", models.ErrStorage, err)
	}
	return nil
}

func (p *PostgresStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	query := `SELECT account_id, account_holder_name, balance, created_at FROM accounts
	WHERE account_id = $1`
	if p.inTx {
		query += ` FOR UPDATE`
	}

	var acct models.Account
	err := p.q.QueryRowContext(ctx, query, accountID).Scan(
		&acct.AccountID,
		&acct.HolderName,
		&acct.Balance,
		&acct.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: select account: %v", models.ErrStorage, err)
	}
	return acct, nil
}

func (p *PostgresStore) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = $1 WHERE account_id = $2`

	result, err := p.q.ExecContext(ctx, query, balance, accountID)
	if err != nil {
		return fmt.Errorf("%w: update balance: %v", models.ErrStorage, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update balance: %v", models.ErrStorage, err)
	}
	if affected == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (p *PostgresStore) AppendEntry(ctx context.Context, entry models.TransactionEntry) (models.TransactionEntry, error) {
	const query = `INSERT INTO transactions (account_id, transaction_type, amount, balance_after, timestamp)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING transaction_id`

	err := p.q.QueryRowContext(ctx, query,
		entry.AccountID,
		string(entry.Type),
		entry.Amount,
		entry.BalanceAfter,
		entry.Timestamp,
	).Scan(&entry.TransactionID)
	if err != nil {
		return models.TransactionEntry{}, fmt.Errorf("%w: append entry: %v", models.ErrStorage, err)
	}
	return entry, nil
}

func (p *PostgresStore) ListEntries(ctx context.Context, accountID string, limit int) ([]models.TransactionEntry, error) {
	const query = `SELECT transaction_id, account_id, transaction_type, amount, balance_after, timestamp
	FROM transactions
	WHERE account_id = $1
	ORDER BY timestamp DESC, transaction_id DESC
	LIMIT $2`

	rows, err := p.q.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", models.ErrStorage, err)
	}
	defer rows.Close()

	var entries []models.TransactionEntry
	for rows.Next() {
		var entry models.TransactionEntry
		var entryType string
		if err := rows.Scan(
			&entry.TransactionID,
			&entry.AccountID,
			&entryType,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", models.ErrStorage, err)
		}
		entry.Type = models.EntryType(entryType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", models.ErrStorage, err)
	}
	return entries, nil
}

// Atomically runs fn against a transaction-bound copy of the store.
// Domain errors returned by fn (not found, insufficient funds) pass
// through unchanged; only begin/commit failures are classified as
// storage failures.
func (p *PostgresStore) Atomically(ctx context.Context, fn func(tx interfaces.Store) error) error {
	if p.inTx {
		return fn(p)
	}

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", models.ErrStorage, err)
	}

	txStore := &PostgresStore{db: p.db, q: dbTx, inTx: true}
	if err := fn(txStore); err != nil {
		dbTx.Rollback()
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", models.ErrStorage, err)
	}
	return nil
}

var _ interfaces.Store = (*PostgresStore)(nil)
