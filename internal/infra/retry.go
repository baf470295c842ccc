package infra

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/logging"
)

// RetryPolicy defines retry behavior with exponential backoff.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
	Jitter            float64 // fraction of the delay, 0 disables
}

// DefaultRetryPolicy allows 3 attempts with 1s, 2s, 4s... delays and no jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// Backoff returns the delay after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(mult, float64(attempt-1))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Executor runs remote calls under a RetryPolicy. Every attempt, delay and
// outcome goes to the logger at debug level; callers only see the final result.
type Executor struct {
	policy   RetryPolicy
	logger   *log.Logger
	sleep    SleepFunc
	classify func(error) Outcome
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSleep replaces the backoff sleep (tests use it to record delays).
func WithSleep(fn SleepFunc) ExecutorOption {
	return func(e *Executor) { e.sleep = fn }
}

// NewExecutor creates an executor. A nil logger discards diagnostics.
func NewExecutor(policy RetryPolicy, logger *log.Logger, opts ...ExecutorOption) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	e := &Executor{
		policy:   policy,
		logger:   logging.OrNop(logger),
		sleep:    Sleep,
		classify: Classify,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs fn until it succeeds, fails with a non-transient outcome, or the
// attempt budget is spent. Failures are returned as *CallError.
func (e *Executor) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	_, err := Execute(ctx, e, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Execute is the generic form of Executor.Do.
func Execute[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	limit := e.policy.MaxAttempts

	for attempt := 1; attempt <= limit; attempt++ {
		start := time.Now()
		e.logger.Debug().Str("op", op).Int("attempt", attempt).Int("max_attempts", limit).Msg("calling")

		result, err := fn(ctx)
		elapsed := time.Since(start)
		outcome := e.classify(err)

		if outcome == OutcomeSuccess {
			e.logger.Debug().Str("op", op).Int("attempt", attempt).Dur("elapsed", elapsed).Msg("call succeeded")
			return result, nil
		}
		lastErr = err

		switch outcome {
		case OutcomeRateLimited, OutcomeFatalAuth, OutcomePermanent:
			e.logger.Debug().Str("op", op).Int("attempt", attempt).Str("outcome", outcome.String()).
				Err(err).Msg("non-retryable failure, not retrying")
			return zero, &CallError{Op: op, Outcome: outcome, Attempts: attempt, Err: err}
		}

		if attempt == limit {
			break
		}
		delay := e.policy.Backoff(attempt)
		e.logger.Debug().Str("op", op).Int("attempt", attempt).Dur("elapsed", elapsed).
			Dur("backoff", delay).Err(err).Msg("transient failure, retrying after backoff")

		if serr := e.sleep(ctx, delay); serr != nil {
			return zero, &CallError{Op: op, Outcome: OutcomePermanent, Attempts: attempt, Err: serr}
		}
	}

	e.logger.Debug().Str("op", op).Int("max_attempts", limit).Err(lastErr).Msg("all retry attempts exhausted")
	return zero, &CallError{Op: op, Outcome: OutcomeTransient, Attempts: limit, Err: lastErr}
}
