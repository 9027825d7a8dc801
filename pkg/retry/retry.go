package retry

import (
	"context"
	"math"
	"time"
)

// Policy describes how a fallible operation is retried: how many attempts
// are made and how the delay between attempts grows.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int
	// BaseDelay is the delay applied after the first failed attempt
	BaseDelay time.Duration
	// MaxDelay caps the computed delay; zero means no cap
	MaxDelay time.Duration
	// Factor is the exponential growth factor between attempts
	Factor float64
}

// DefaultPolicy returns the retry behavior used for provider calls:
// three attempts with exponentially doubling delay (1s, 2s).
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Factor:      2,
	}
}

// Delay returns the backoff delay applied after the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 2
	}

	delay := float64(p.BaseDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

// Do runs fn up to p.MaxAttempts times, sleeping between attempts according
// to the policy. It returns the successful result, the number of attempts
// actually made, and the last error when every attempt failed. The sleep
// honors context cancellation.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, int, error) {
	var zero T
	var lastErr error

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, attempt + 1, nil
		}
		lastErr = err

		// No sleep after the final attempt
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, attempt + 1, ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}

	return zero, attempts, lastErr
}
