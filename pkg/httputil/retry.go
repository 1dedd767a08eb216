package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. Backoff.Do retries only
// errors that wrap one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Backoff retries an operation with exponentially growing waits.
type Backoff struct {
	Attempts int           // Total tries, including the first; at least 1
	Delay    time.Duration // Wait after the first failure
	MaxDelay time.Duration // Upper bound for a single wait; 0 means none
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. fn receives the 1-based attempt number. The last error
// is returned unchanged, still wrapped in its RetryableError. A cancelled
// ctx stops the waiting and returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return err
}

// Retry runs fn with a Backoff of the given attempts and initial delay.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, func(int) error { return fn() })
}

// IsRetryable reports whether err wraps a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
