package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// RetryPolicy re-runs a failing operation a fixed number of times with a
// fixed delay. Permanent errors (see domain.IsPermanent) are not retried.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration

	// sleep waits for d or until ctx is done. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a policy from pipeline settings.
func NewRetryPolicy(settings domain.PipelineSettings) RetryPolicy {
	return RetryPolicy{MaxRetries: settings.MaxRetries, Backoff: settings.RetryDelay}
}

// Do calls fn until it succeeds, fails permanently, or retries run out.
// The last error is returned annotated with the attempt count.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if domain.IsPermanent(err) || attempt > p.MaxRetries {
			return fmt.Errorf("%s: giving up after %d attempt(s): %w", name, attempt, err)
		}

		logger.Warn("retry: %s attempt %d failed, retrying in %s: %v", name, attempt, p.Backoff, err)
		if serr := sleep(ctx, p.Backoff); serr != nil {
			return fmt.Errorf("%s: retry aborted: %w", name, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
