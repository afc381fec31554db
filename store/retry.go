package store

import (
	"context"
	"errors"
	"time"
)

const (
	retryAttempts   = 3
	retryBaseDelay  = 50 * time.Millisecond
	retryDelayLimit = time.Second
)

// RetryConflict runs fn, re-running it with exponential backoff when it fails
// with ErrConflict. fn must re-read the entity on each attempt so a fresh
// concurrency token is used. Any other error, or a conflict surviving the
// final attempt, is returned as-is.
func RetryConflict(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > retryDelayLimit {
				delay = retryDelayLimit
			}
		}
		err = fn()
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
