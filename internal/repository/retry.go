package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"talkboard-backend/internal/observability"
)

// RetryConfig defines retry behavior for store operations. Constructed once
// per executor and immutable thereafter.
type RetryConfig struct {
	MaxRetries    int           // Additional attempts beyond the first
	BaseDelay     time.Duration // Delay before the first retry
	MaxDelay      time.Duration // Cap on the computed backoff
	BackoffFactor float64       // Exponential backoff multiplier
	Jitter        bool          // Full jitter: uniform(0, delay)

	// RetryConditionFailed opts in to retrying CONDITIONAL_CHECK_FAILED.
	// Terminal by default; only useful for read-modify-write loops that
	// refetch between attempts.
	RetryConditionFailed bool
}

// DefaultRetryConfig returns the retry configuration used when the caller
// supplies none.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Executor runs operations with exponential backoff and full jitter,
// consulting the error classifier between attempts. Retries within one
// invocation are sequential; there is no parallel racing of attempts.
type Executor struct {
	config RetryConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExecutor creates a retry executor. A nil logger disables logging.
func NewExecutor(config RetryConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &Executor{
		config: config,
		logger: logger.Named("retry"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the executor's immutable configuration.
func (e *Executor) Config() RetryConfig {
	return e.config
}

// Do executes fn, retrying classified-retryable failures up to
// MaxRetries additional times. Terminal errors propagate on first
// occurrence; exhausting the budget returns the last error.
func (e *Executor) Do(ctx context.Context, operation string, fn func() error) error {
	attempts := e.config.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			observability.RetryAttempts.WithLabelValues(operation, "success").Inc()
			return nil
		}
		lastErr = err

		kind, retryable := Classify(err)
		if kind == KindConditionalCheckFailed && e.config.RetryConditionFailed {
			retryable = true
		}
		if !retryable {
			observability.RetryAttempts.WithLabelValues(operation, "terminal").Inc()
			return err
		}
		observability.RetryAttempts.WithLabelValues(operation, "retryable").Inc()

		if attempt == attempts-1 {
			break
		}

		delay := e.backoffDelay(attempt)
		e.logger.Debug("retrying operation",
			zap.String("operation", operation),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}

// backoffDelay computes the sleep before the retry following attempt.
// The result always satisfies 0 <= delay <= MaxDelay.
func (e *Executor) backoffDelay(attempt int) time.Duration {
	delay := float64(e.config.BaseDelay) * math.Pow(e.config.BackoffFactor, float64(attempt))
	if max := float64(e.config.MaxDelay); delay > max {
		delay = max
	}
	if e.config.Jitter {
		e.mu.Lock()
		delay = e.rng.Float64() * delay
		e.mu.Unlock()
	}
	return time.Duration(delay)
}
