package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := testPolicy().Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestDoPermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad request")
	err := testPolicy().Do(context.Background(), func() error {
		attempts++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	err := testPolicy().Do(context.Background(), func() error {
		attempts++
		return Transient(errors.New("still down"))
	})

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !IsTransient(err) {
		t.Errorf("Expected transient error, got: %v", err)
	}
	// Initial attempt plus MaxRetries retries.
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Policy{MaxRetries: 3, BaseDelay: time.Hour}.Do(ctx, func() error {
		attempts++
		return Transient(errors.New("down"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestTransientNilPassthrough(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should return nil")
	}
	if IsTransient(nil) {
		t.Error("IsTransient(nil) should be false")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("IsTransient should be false for unwrapped errors")
	}
}

func TestTransientUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Transient(inner)

	if !errors.Is(wrapped, inner) {
		t.Error("Transient error should unwrap to the inner error")
	}
	if wrapped.Error() != "inner" {
		t.Errorf("Expected message 'inner', got %q", wrapped.Error())
	}
}
