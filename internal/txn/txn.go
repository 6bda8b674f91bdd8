// Package txn provides the retryable optimistic-transaction discipline used by
// every read-modify-write against shared counters and sets.
package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
)

// Policy bounds how a transaction is retried.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy is a sane budget for interactive operations.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

func (p Policy) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Retryable reports whether err is a transient condition worth another
// attempt. Conflicts come from optimistic version checks and unique-key
// races; storage errors from the backend.
func Retryable(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStorageUnavailable)
}

// Do runs fn, retrying retryable failures with exponential backoff up to the
// policy's attempt budget. Terminal errors pass through unchanged; an
// exhausted budget surfaces as ErrContention wrapping the last failure.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy()
	}
	bo := p.newBackOff()

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !Retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			break
		}
		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%d attempts: %v: %w", p.MaxAttempts, err, domain.ErrContention)
}
