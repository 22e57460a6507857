package executor

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
)

// RetryConfig bounds retries of operations that lost a race on a unique key
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// retryable reports whether err comes from a concurrent writer and the whole operation can be re-run
func retryable(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, domain.ErrConcurrentUpdate)
}

// withRetry runs op, re-running it with exponential backoff while it fails with a retryable error
func (e *executor) withRetry(ctx context.Context, operation string, op func() error) error {
	if e.retry.MaxRetries <= 0 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	if e.retry.InitialInterval > 0 {
		b.InitialInterval = e.retry.InitialInterval
	}
	if e.retry.MaxInterval > 0 {
		b.MaxInterval = e.retry.MaxInterval
	}

	bounded := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.retry.MaxRetries)), ctx)

	attempt := func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		e.metrics.Retry()
		logger.WarnCtx(ctx, "Operation lost a race, retrying",
			zap.String("operation", operation),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	return backoff.RetryNotify(attempt, bounded, notifyOnError)
}
