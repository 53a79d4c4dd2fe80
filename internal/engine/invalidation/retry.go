package invalidation

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// RetryResult is the tagged outcome of ExecuteWithRetry.
type RetryResult struct {
	Success  bool
	FilePath string
	Attempts int
	Err      error
}

// Retrier calls an operation up to a bounded number of times with a fixed delay.
// It makes no distinction between transient and permanent failures, so the
// operation must be safe to repeat.
type Retrier struct {
	delay time.Duration
	bus   *Bus
	now   func() time.Time
}

// NewRetrier creates a retrier waiting delay between attempts and announcing
// retries on bus.
func NewRetrier(delay time.Duration, bus *Bus) *Retrier {
	return &Retrier{delay: delay, bus: bus, now: time.Now}
}

// ExecuteWithRetry runs op until it succeeds or maxRetries attempts failed.
// A retrying event carrying the failed attempt number precedes every new attempt.
func (r *Retrier) ExecuteWithRetry(ctx context.Context, op func(context.Context) error, filePath string, maxRetries int) RetryResult {
	if maxRetries < 1 {
		maxRetries = 1
	}

	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			return op(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, _ error) {
			// OnRetry also fires after the final attempt.
			if int(n)+1 >= maxRetries {
				return
			}
			r.bus.Emit(domain.InvalidationEvent{
				Name:       domain.EventInvalidationRetrying,
				FilePath:   filePath,
				Timestamp:  r.now(),
				Attempt:    int(n) + 1,
				MaxRetries: maxRetries,
			})
		}),
	)
	if err != nil {
		return RetryResult{
			FilePath: filePath,
			Attempts: attempts,
			Err:      errors.Join(domain.ErrRetriesExhausted, zerr.With(zerr.With(err, "attempts", attempts), "file_path", filePath)),
		}
	}
	return RetryResult{Success: true, FilePath: filePath, Attempts: attempts}
}
