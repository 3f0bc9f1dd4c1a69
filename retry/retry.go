// Package retry runs an operation a bounded number of times with a fixed
// delay between failed attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// defaultAttempts is the number of attempts made by the Default policy.
	defaultAttempts = 3
	// defaultDelay is the pause between attempts of the Default policy.
	defaultDelay = 2 * time.Second
)

// ErrExhausted is returned (wrapped with the last attempt's error) when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes a bounded retry with a fixed delay between attempts.
type Policy struct {
	Attempts int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"Number of attempts before giving up"`
	Delay    time.Duration `long:"delay" env:"DELAY" default:"2s" description:"Fixed delay between attempts"`
}

// Default is three attempts, two seconds apart.
var Default = Policy{Attempts: defaultAttempts, Delay: defaultDelay}

// attempts returns the effective number of attempts, never less than one.
func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// Do calls fn until it succeeds or the policy's attempts are used up.
// The attempt number passed to fn starts at 1.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	_, err := Value(ctx, p, func(attempt int) (struct{}, error) {
		return struct{}{}, fn(attempt)
	})
	return err
}

// Value is Do for operations which produce a result. The delay between
// attempts is abandoned if ctx is cancelled.
func Value[T any](ctx context.Context, p Policy, fn func(attempt int) (T, error)) (T, error) {
	var (
		attempt int
		lastErr error
		limit   = p.attempts()
	)
	var policy = backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(limit-1)), ctx)

	value, err := backoff.RetryWithData(func() (T, error) {
		attempt++
		value, err := fn(attempt)
		if err != nil {
			lastErr = err
		}
		return value, err
	}, policy)

	var zero T
	switch {
	case err == nil:
		return value, nil
	case ctx.Err() != nil:
		return zero, fmt.Errorf("retry cancelled after attempt %d: %w", attempt, errors.Join(ctx.Err(), lastErr))
	default:
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, lastErr)
	}
}
