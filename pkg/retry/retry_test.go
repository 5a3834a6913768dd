package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func TestDoRetriesTransientFailures(t *testing.T) {
	policy := Policy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoDoesNotRetryDomainErrors(t *testing.T) {
	policy := Policy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return apperrors.NewValidationError("bad input", nil)
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if apperrors.CodeOf(err) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestDoWrapsExhaustionAsTransportError(t *testing.T) {
	policy := Policy{Attempts: 3, BaseDelay: time.Millisecond}

	transient := errors.New("timeout")
	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if apperrors.CodeOf(err) != "TRANSPORT_ERROR" {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if !errors.Is(err, transient) {
		t.Fatalf("wrapped error should retain the cause: %v", err)
	}
}

func TestDoStopsWhenContextCanceled(t *testing.T) {
	policy := Policy{Attempts: 5, BaseDelay: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("timeout")
	})
	if apperrors.CodeOf(err) != "TRANSPORT_ERROR" {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call after cancellation, got %d", calls)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	policy := Policy{}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
