package memlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_MutualExclusion(t *testing.T) {
	locks := NewService()

	token, ok, err := locks.Acquire(context.Background(), "k", 50*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locks.Acquire(context.Background(), "k", 20*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locks.Release(context.Background(), "k", token))

	_, ok, err = locks.Acquire(context.Background(), "k", 20*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_WaitSucceedsWhenReleased(t *testing.T) {
	locks := NewService()

	token, ok, err := locks.Acquire(context.Background(), "k", 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = locks.Release(context.Background(), "k", token)
	}()

	_, ok, err = locks.Acquire(context.Background(), "k", time.Second, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_LeaseExpires(t *testing.T) {
	locks := NewService()

	// Holder never releases; the lease lapses on its own.
	_, ok, err := locks.Acquire(context.Background(), "k", 10*time.Millisecond, 30*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locks.Acquire(context.Background(), "k", time.Second, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_ReleaseRequiresToken(t *testing.T) {
	locks := NewService()

	_, ok, err := locks.Acquire(context.Background(), "k", 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// Wrong token must not free someone else's lease.
	require.NoError(t, locks.Release(context.Background(), "k", "not-the-token"))

	_, ok, err = locks.Acquire(context.Background(), "k", 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_OnlyOneWinnerAtATime(t *testing.T) {
	locks := NewService()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, ok, err := locks.Acquire(context.Background(), "k", time.Second, time.Second)
			if err != nil || !ok {
				return
			}
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
			_ = locks.Release(context.Background(), "k", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}
