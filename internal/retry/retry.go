// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady tells the policy the operation has not succeeded yet but is
// worth retrying. Any other error stops the loop immediately.
var ErrNotReady = errors.New("retry: not ready")

// Outcome is the tri-state result of running a policy.
type Outcome int

const (
	Success Outcome = iota
	Exhausted
	HardError
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Exhausted:
		return "exhausted"
	case HardError:
		return "hard_error"
	default:
		return "unknown"
	}
}

// Policy is a bounded, fixed-delay retry. Attempts run strictly sequentially;
// the delay is applied between attempts, never after the last one.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do runs op until it returns nil (Success), a non-retryable error
// (HardError), the attempt budget runs out (Exhausted), or ctx is done.
// The returned error is the last one observed.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) (Outcome, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return HardError, ctx.Err()
			}
		}

		err := op(ctx)
		if err == nil {
			return Success, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return HardError, err
		}
		lastErr = err
	}

	return Exhausted, lastErr
}
