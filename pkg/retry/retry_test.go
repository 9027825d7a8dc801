package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		Factor:      2,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	result, attempts, err := Do(context.Background(), fastPolicy(3), func() (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, attempts)
}

func TestDoRecoversAfterFailures(t *testing.T) {
	calls := 0
	result, attempts, err := Do(context.Background(), fastPolicy(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsBudget(t *testing.T) {
	cause := errors.New("still broken")
	calls := 0
	_, attempts, err := Do(context.Background(), fastPolicy(3), func() (int, error) {
		calls++
		return 0, cause
	})

	require.Error(t, err)
	assert.Equal(t, cause, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{MaxAttempts: 5, BaseDelay: time.Minute, Factor: 2}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, attempts, err := Do(ctx, p, func() (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
}

func TestDelayGrowsAndCaps(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Factor: 2}

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 3*time.Second, p.Delay(2)) // capped
}
