// ABOUTME: Timeout guard and bounded retry wrappers for remote store calls
// ABOUTME: Implements the shared attempt budget and linear backoff policy
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/aleayin/orderdesk/errs"
)

const (
	// DefaultMaxAttempts is the total attempt budget for a retried operation.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the base inter-attempt delay. The wait after attempt
	// n is n*DefaultBackoff, so delays grow 2s, 4s, ...
	DefaultBackoff = 2 * time.Second

	// ReadDeadline bounds a single-record remote read or write.
	ReadDeadline = 15 * time.Second

	// OpDeadline bounds a compound operation that may retry internally.
	OpDeadline = 60 * time.Second
)

// Guard runs op and fails with ErrTimeout if it has not settled within
// deadline. The store SDK has no cancellation, so a timed-out op is left to
// settle in the background; only the wait is abandoned.
func Guard(name string, deadline time.Duration, op func() error) error {
	done := make(chan error, 1)
	go func() { done <- op() }()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%s after %s: %w", name, deadline, errs.ErrTimeout)
	}
}

// Executor retries an operation up to MaxAttempts times with linear backoff.
// The zero value uses the defaults above; tests shrink the durations.
type Executor struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Do runs op until it succeeds or the attempt budget is spent. All attempt
// failures are treated uniformly; the last one is wrapped into
// ErrRetryExhausted. A cancelled context aborts the wait between attempts but
// never interrupts a running attempt.
func (e Executor) Do(ctx context.Context, name string, op func() error) error {
	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	backoff := e.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = op()
		if last == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * backoff):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
	}

	return fmt.Errorf("%s after %d attempts: %w: %w", name, attempts, errs.ErrRetryExhausted, last)
}
