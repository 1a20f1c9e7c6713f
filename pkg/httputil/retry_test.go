package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("err = %v, calls = %d; want nil, 1", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			return errFatal
		})
		if !errors.Is(err, errFatal) || calls != 1 {
			t.Errorf("err = %v, calls = %d; want fatal, 1", err, calls)
		}
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errTransient}
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, 2, time.Millisecond, func() error {
			calls++
			return &RetryableError{Err: errTransient}
		})
		if !errors.Is(err, errTransient) || calls != 2 {
			t.Errorf("err = %v, calls = %d; want transient, 2", err, calls)
		}
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(ctx, 0, time.Millisecond, func() error {
			calls++
			return nil
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestRetry_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	wrapped := &RetryableError{Err: errors.New("x")}
	if !IsRetryable(wrapped) {
		t.Error("RetryableError should be retryable")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error should not be retryable")
	}
}
