package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/krishshaw418/Banking-MCP-Server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockTableAcquireRelease(t *testing.T) {
	table := newLockTable(time.Second)
	ctx := context.Background()

	release, err := table.Acquire(ctx, "acct-1")
	require.NoError(t, err)
	release()

	release, err = table.Acquire(ctx, "acct-1")
	require.NoError(t, err)
	release()
}

func TestLockTableTimesOutWhileHeld(t *testing.T) {
	table := newLockTable(30 * time.Millisecond)
	ctx := context.Background()

	release, err := table.Acquire(ctx, "acct-1")
	require.NoError(t, err)
	defer release()

	_, err = table.Acquire(ctx, "acct-1")
	assert.ErrorIs(t, err, models.ErrLockTimeout)
}

func TestLockTableDistinctAccountsDoNotContend(t *testing.T) {
	table := newLockTable(30 * time.Millisecond)
	ctx := context.Background()

	release1, err := table.Acquire(ctx, "acct-1")
	require.NoError(t, err)
	defer release1()

	release2, err := table.Acquire(ctx, "acct-2")
	require.NoError(t, err)
	defer release2()
}

func TestLockTableContextCancellation(t *testing.T) {
	table := newLockTable(time.Minute)

	release, err := table.Acquire(context.Background(), "acct-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = table.Acquire(ctx, "acct-1")
	assert.ErrorIs(t, err, models.ErrLockTimeout)
}

func TestLockTableSerializesWaiters(t *testing.T) {
	table := newLockTable(time.Second)
	ctx := context.Background()

	const waiters = 10
	var mu sync.Mutex
	var inCritical int
	var maxInCritical int

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := table.Acquire(ctx, "acct-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}
