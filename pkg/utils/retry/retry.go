package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry marks errors worth retrying.
//
// Wrap errors with it, like fmt.Errorf("%w: %w", retry.ErrRetry, err) .
var ErrRetry = errors.New("retry")

// Backoff is a (blocking) function returns when to retry.
//
// # Args
//
// - context: context. If context is canceled, Backoff should return ctx.Err().
//
// # Returns
//
// - error: nil if retry, non-nil if not.
type Backoff func(context.Context) error

// StaticBackoff returns a Backoff function that waits for a fixed interval.
var StaticBackoff = func(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff returns a Backoff function that waits with exponential backoff.
//
// # Args
//
// - initialInterval: initial interval.
//
// - r: multiplier of interval.
//
// # Returns
//
// Backoff function.
// For N-th call, it waits for `initialInterval * r^N` or context to be done.
var ExponentialBackoff = func(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			return nil
		}
	}
}

// Do calls f until it returns nil or an error not wrapping ErrRetry,
// at most `attempts` times.
//
// The first call is made immediately, and b is awaited before each retry.
//
// # Returns
//
// - T: last return value of f
//
// - error: last error returned by f, or
// the error of f joined with the error of b when b gives up.
func Do[T any](ctx context.Context, attempts uint, b Backoff, f func(context.Context) (T, error)) (T, error) {
	for n := uint(1); ; n++ {
		last, err := f(ctx)
		if err == nil || !errors.Is(err, ErrRetry) || attempts <= n {
			return last, err
		}
		if berr := b(ctx); berr != nil {
			return last, errors.Join(err, berr)
		}
	}
}
