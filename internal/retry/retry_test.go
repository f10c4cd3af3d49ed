// internal/retry/retry_test.go
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Delay: 20 * time.Millisecond}

	calls := 0
	start := time.Now()
	outcome, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return ErrNotReady
		}
		return nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, 3, calls)
	// two inter-attempt delays
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	outcome, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return ErrNotReady
	})

	assert.Equal(t, Exhausted, outcome)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnHardError(t *testing.T) {
	policy := Policy{MaxAttempts: 5, Delay: time.Millisecond}
	boom := errors.New("boom")

	calls := 0
	outcome, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.Equal(t, HardError, outcome)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 10, Delay: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	outcome, err := policy.Do(ctx, func(context.Context) error {
		return ErrNotReady
	})

	assert.Equal(t, HardError, outcome)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoRunsAtLeastOnce(t *testing.T) {
	policy := Policy{}

	calls := 0
	outcome, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, Success, outcome)
	assert.Equal(t, 1, calls)
}
