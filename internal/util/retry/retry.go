// Package retry provides utilities for retrying operations at a fixed interval.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is wrapped by the error returned when the attempt or wait budget runs out.
var ErrExhausted = errors.New("retry budget exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds retry configuration.
type Config struct {
	// MaxAttempts caps the total number of attempts. 0 means no cap.
	MaxAttempts int
	// Interval is the fixed wait between attempts.
	Interval time.Duration
	// MaxElapsed caps the total time spent waiting between attempts. 0 means no cap.
	MaxElapsed time.Duration
	// RetryIf decides whether an error is worth another attempt.
	RetryIf func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
	// Sleep performs the wait.
	Sleep SleepFunc
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Result describes how an operation went.
type Result struct {
	Attempts int
	Waited   time.Duration
}

// Do executes the operation and retries it while RetryIf accepts the error.
// Context cancellation is respected between attempts.
//
// Errors rejected by RetryIf are returned unchanged so callers can inspect
// the provider's original error.
func Do(ctx context.Context, operation func(context.Context) error, opts ...Option) (Result, error) {
	cfg := &Config{
		Interval: 10 * time.Second,
		RetryIf:  func(error) bool { return true },
		Sleep:    Sleep,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	var res Result
	for {
		res.Attempts++
		err := operation(ctx)
		if err == nil {
			return res, nil
		}

		if !cfg.RetryIf(err) {
			return res, err
		}

		if cfg.MaxAttempts > 0 && res.Attempts >= cfg.MaxAttempts {
			return res, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, res.Attempts, err)
		}
		if cfg.MaxElapsed > 0 && res.Waited+cfg.Interval > cfg.MaxElapsed {
			return res, fmt.Errorf("%w after waiting %s: %w", ErrExhausted, res.Waited, err)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(res.Attempts, err, cfg.Interval)
		}

		if serr := cfg.Sleep(ctx, cfg.Interval); serr != nil {
			return res, fmt.Errorf("context cancelled after %d attempts: %w", res.Attempts, serr)
		}
		res.Waited += cfg.Interval
	}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithInterval sets the wait between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxElapsed sets the maximum total wait.
func WithMaxElapsed(d time.Duration) Option {
	return func(c *Config) {
		c.MaxElapsed = d
	}
}

// WithRetryIf sets the retry predicate.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) {
		c.RetryIf = fn
	}
}

// WithOnRetry sets a hook called before every wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}

// WithSleep replaces the wait implementation (useful for testing).
func WithSleep(fn SleepFunc) Option {
	return func(c *Config) {
		c.Sleep = fn
	}
}
