package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimitWithoutWaiting(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_WaitsForNextWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 50*time.Millisecond)
	require.NoError(t, rl.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimiter_ResetAfterInterval(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	rl.lastReset = now

	assert.Zero(t, rl.reserve())
	assert.Zero(t, rl.reserve())
	assert.Equal(t, time.Second, rl.reserve())

	now = now.Add(400 * time.Millisecond)
	assert.Equal(t, 600*time.Millisecond, rl.reserve())

	now = now.Add(600 * time.Millisecond)
	assert.Zero(t, rl.reserve())
}

func TestRateLimiter_NonPositiveLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Hour)
	assert.Equal(t, 1, rl.limit)
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rl.Wait(context.Background()))
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, rl.count)
}
