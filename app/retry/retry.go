// Package retry provides the backoff policy shared by the catalog and
// metrics API clients.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
)

// TransientError marks an error as retryable (rate limit or transient
// upstream failure). Anything not wrapped in it fails immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Policy retries transient failures with exponential backoff:
// BaseDelay, 2*BaseDelay, 4*BaseDelay, ... up to MaxRetries retries.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

func (p Policy) Do(ctx context.Context, op func() error) error {
	delay := p.BaseDelay

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil || !IsTransient(err) {
			return err
		}

		if attempt >= p.MaxRetries {
			return err
		}

		slog.Warn("Transient error, retrying", "delay", delay.String(), "attempt", attempt+1, "max_retries", p.MaxRetries, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
	}
}
