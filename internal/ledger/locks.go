package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
)

// lockTable hands out one lock per account id so the read-modify-write
// balance sequence is serialized per account while operations on
// different accounts run in parallel. An operation never holds more
// than one account's lock.
type lockTable struct {
	maxWait time.Duration
	mapMu   sync.Mutex               // protects locks
	locks   map[string]chan struct{} // cap-1 channel per account, a token in the channel means held
}

func newLockTable(maxWait time.Duration) *lockTable {
	return &lockTable{
		maxWait: maxWait,
		locks:   make(map[string]chan struct{}),
	}
}

func (t *lockTable) lockFor(accountID string) chan struct{} {
	t.mapMu.Lock()
	defer t.mapMu.Unlock()

	ch, exists := t.locks[accountID]
	if !exists {
		ch = make(chan struct{}, 1)
		t.locks[accountID] = ch
	}
	return ch
}

// Acquire blocks until the account's lock is free, the wait bound
// elapses, or ctx is cancelled. The two failure cases surface as
// models.ErrLockTimeout: the operation touched nothing and the caller
// may retry. On success the returned func releases the lock.
func (t *lockTable) Acquire(ctx context.Context, accountID string) (release func(), err error) {
	ch := t.lockFor(accountID)

	timer := time.NewTimer(t.maxWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: account %s held for over %s", models.ErrLockTimeout, accountID, t.maxWait)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", models.ErrLockTimeout, ctx.Err())
	}
}
