package polish

import (
	"context"
	"time"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/util/retry"
)

// RetryPolicy governs disk attachment while the node is busy. Only
// transient provider errors are retried, at a fixed interval.
type RetryPolicy struct {
	// Interval is the wait between attempts. 0 means the 10s default.
	Interval time.Duration
	// MaxAttempts caps attempts per disk. 0 means no cap.
	MaxAttempts int
	// MaxElapsed caps the total wait per disk. 0 means no cap.
	MaxElapsed time.Duration
	// Sleep replaces the real wait, for tests.
	Sleep retry.SleepFunc
}

// DefaultRetryPolicy returns the policy configured by the FITTINGS_RETRY_*
// environment.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicyFromTimeouts(config.LoadTimeouts())
}

// RetryPolicyFromTimeouts builds a policy from loaded timeouts.
func RetryPolicyFromTimeouts(t *config.Timeouts) RetryPolicy {
	return RetryPolicy{
		Interval:    t.RetryInterval,
		MaxAttempts: t.RetryMaxAttempts,
		MaxElapsed:  t.RetryMaxElapsed,
	}
}

// Do runs op until it succeeds, fails permanently, or the budget runs out.
// onRetry is called before each wait.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error, onRetry func(attempt int, err error, wait time.Duration)) (retry.Result, error) {
	opts := []retry.Option{
		retry.WithMaxAttempts(p.MaxAttempts),
		retry.WithMaxElapsed(p.MaxElapsed),
		retry.WithRetryIf(config.IsTransient),
	}
	if p.Interval > 0 {
		opts = append(opts, retry.WithInterval(p.Interval))
	}
	if onRetry != nil {
		opts = append(opts, retry.WithOnRetry(onRetry))
	}
	if p.Sleep != nil {
		opts = append(opts, retry.WithSleep(p.Sleep))
	}
	return retry.Do(ctx, op, opts...)
}
