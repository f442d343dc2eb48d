package retry

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/yumyai/protclass/logger"
	"go.uber.org/zap"
)

// Config holds the configuration for retry logic
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig is used by the UniProt client and the embedding provider.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// ErrorChecker decides whether an attempt should be retried.
type ErrorChecker func(err error, statusCode int) bool

// Options configures retry behavior
type Options struct {
	Config       Config
	ErrorChecker ErrorChecker
	APIName      string
}

// RetryExhaustedError is returned when every attempt ended in a retryable status.
type RetryExhaustedError struct {
	APIName        string
	MaxAttempts    int
	LastStatusCode int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry attempts exhausted for %s API after %d attempts (last status %d)",
		e.APIName, e.MaxAttempts, e.LastStatusCode)
}

// IsTransient retries network errors (no status received), rate limiting and
// server errors.
func IsTransient(err error, statusCode int) bool {
	if err != nil && statusCode == 0 {
		return true
	}
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func (c Config) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Execute calls fn until it succeeds, returns a non-retryable outcome, the
// retries run out, or ctx is done. fn reports the HTTP status it saw (0 if none).
func Execute[T any](ctx context.Context, opts Options, fn func(attempt int) (T, int, error)) (T, error) {
	var zero T
	var lastErr error
	var lastStatus int

	checker := opts.ErrorChecker
	if checker == nil {
		checker = IsTransient
	}

	for attempt := 0; attempt <= opts.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := opts.Config.calculateDelay(attempt - 1)
			logger.Debug("Retrying request",
				zap.String("api", opts.APIName),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", opts.Config.MaxRetries+1),
				zap.Duration("delay", delay),
			)

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, status, err := fn(attempt)
		lastErr, lastStatus = err, status

		if checker(err, status) && attempt < opts.Config.MaxRetries {
			if err != nil {
				logger.Warn("Request failed", zap.String("api", opts.APIName), zap.Int("attempt", attempt+1), zap.Error(err))
			} else {
				logger.Warn("Retryable status", zap.String("api", opts.APIName), zap.Int("attempt", attempt+1), zap.Int("status", status))
			}
			continue
		}

		if err != nil {
			return zero, err
		}
		if checker(nil, status) {
			break
		}
		return result, nil
	}

	if lastErr != nil {
		return zero, lastErr
	}
	return zero, &RetryExhaustedError{
		APIName:        opts.APIName,
		MaxAttempts:    opts.Config.MaxRetries + 1,
		LastStatusCode: lastStatus,
	}
}
