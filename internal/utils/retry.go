package utils

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// RetryPolicy retries an operation a fixed number of times with a fixed delay.
// Only errors accepted by Retryable are retried, anything else is returned immediately.
type RetryPolicy struct {
	Attempts  int
	Delay     time.Duration
	Retryable func(error) bool
	Sleep     SleepFunc
	Logger    *slog.Logger
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return DefaultRetryAttempts
	}

	return p.Attempts
}

func (p RetryPolicy) delay() time.Duration {
	if p.Delay <= 0 {
		return DefaultRetryDelay
	}

	return p.Delay
}

// sleepTimer waits between attempts through a SleepFunc, so tests can record the delays
// instead of waiting them out. The channel never fires when the sleep was interrupted.
type sleepTimer struct {
	ctx   context.Context
	sleep SleepFunc
}

func (t sleepTimer) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	if err := t.sleep(t.ctx, d); err == nil {
		ch <- time.Now()
	}

	return ch
}

// Retry calls fn until it succeeds, fails with a non retryable error, or the attempts are exhausted.
func Retry[T any](ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(error) bool { return false }
	}

	attempts := p.attempts()
	res, err := retry.DoWithData(
		func() (T, error) { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(p.delay()),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.WithTimer(sleepTimer{ctx: ctx, sleep: sleep}),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Transient error, retrying", "op", op, "attempt", n+1, "error", err)
		}),
	)
	if err != nil && ctx.Err() == nil && retryable(err) {
		logger.Error("Transient error persisted after multiple retries", "op", op, "attempts", attempts, "error", err)
	}

	return res, err
}
