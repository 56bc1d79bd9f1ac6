// ABOUTME: Tests for the timeout guard and retry executor
// ABOUTME: Covers attempt budgets, backoff growth, and timeout classification
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleayin/orderdesk/errs"
)

func TestGuard_Success(t *testing.T) {
	err := Guard("noop", time.Second, func() error { return nil })
	assert.NoError(t, err)
}

func TestGuard_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Guard("failing op", time.Second, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestGuard_Timeout(t *testing.T) {
	started := time.Now()
	err := Guard("slow op", 20*time.Millisecond, func() error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTimeout)
	assert.Contains(t, err.Error(), "slow op")
	// The guard must give up waiting, not wait for the op to settle.
	assert.Less(t, time.Since(started), 300*time.Millisecond)
}

func TestExecutor_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	e := Executor{MaxAttempts: 3, Backoff: time.Millisecond}
	err := e.Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_SucceedsOnThirdAttempt(t *testing.T) {
	calls := 0
	e := Executor{MaxAttempts: 3, Backoff: time.Millisecond}
	err := e.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutor_ExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	boom := errors.New("store down")
	e := Executor{MaxAttempts: 3, Backoff: time.Millisecond}
	err := e.Do(context.Background(), "save order", func() error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "must make exactly MaxAttempts calls")
	assert.ErrorIs(t, err, errs.ErrRetryExhausted)
	assert.ErrorIs(t, err, boom, "terminal error wraps the last attempt failure")
	assert.Contains(t, err.Error(), "save order")
}

func TestExecutor_BackoffGrowsLinearly(t *testing.T) {
	var timestamps []time.Time
	e := Executor{MaxAttempts: 3, Backoff: 30 * time.Millisecond}
	_ = e.Do(context.Background(), "op", func() error {
		timestamps = append(timestamps, time.Now())
		return errors.New("fail")
	})
	require.Len(t, timestamps, 3)

	gap1 := timestamps[1].Sub(timestamps[0])
	gap2 := timestamps[2].Sub(timestamps[1])
	assert.GreaterOrEqual(t, gap1, 30*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 60*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, gap1, "inter-attempt delay must be non-decreasing")
}

func TestExecutor_ContextCancelsBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	e := Executor{MaxAttempts: 3, Backoff: time.Second}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := e.Do(ctx, "op", func() error {
		calls++
		return errors.New("fail")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ZeroValueUsesDefaults(t *testing.T) {
	var e Executor
	calls := 0
	err := e.Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
