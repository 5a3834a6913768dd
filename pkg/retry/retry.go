// Package retry implements the transport-level backoff applied uniformly
// to round trips against the persistence service.
package retry

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// Policy describes an exponential backoff: Attempts tries in total, the
// first delay is BaseDelay and each subsequent delay doubles.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Default matches the service-wide transport policy.
func Default() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Second}
}

// Do runs op until it succeeds, a non-retryable error occurs, the policy
// is exhausted, or ctx is done. DomainErrors are never retried; they
// represent caller mistakes surfaced immediately. Exhaustion wraps the
// last error as TRANSPORT_ERROR.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperrors.NewTransportError(ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var domainErr *apperrors.DomainError
		if errors.As(lastErr, &domainErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			break
		}
	}
	return apperrors.NewTransportError(lastErr)
}
