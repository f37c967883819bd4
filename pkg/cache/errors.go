package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCacheMiss is returned by [GetJSON] when no usable entry exists.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNetwork marks failures talking to a remote backend.
	ErrNetwork = errors.New("cache backend unreachable")
)

// networkError tags a backend failure with [ErrNetwork] and the operation.
func networkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrNetwork, op, err)
}

// RetryableError marks an error that [RetryWithBackoff] should retry.
type RetryableError struct{ Err error }

// Retryable marks err as retryable. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff parameters for [RetryWithBackoff]. Tests shorten retryDelay.
var (
	retryAttempts = 3
	retryDelay    = 250 * time.Millisecond
)

// RetryWithBackoff calls fn until it succeeds, returns a non-retryable error,
// or the attempts run out. The wait doubles after every failure.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
