package services

import (
	"context"
	"errors"
	"time"

	"logingate/internal/logging"
	"logingate/internal/models"
)

// guard runs a collaborator call and turns a panic into ErrServerError.
func guard(ctx context.Context, logger logging.Logger, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, op+" panic recovered", "panic", r)
			err = models.ErrServerError
		}
	}()
	return fn()
}

// withTimeout bounds ctx by d; a non-positive d leaves ctx alone.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// passThrough keeps err when it is one of the allowed kinds and collapses
// everything else into ErrServerError.
func passThrough(err error, allowed ...*models.CodeError) error {
	if err == nil {
		return nil
	}
	for _, a := range allowed {
		if errors.Is(err, a) {
			return a
		}
	}
	return models.ErrServerError
}
