// Package retry runs remote operations with a bounded attempt budget and
// exponential backoff, doubling the wait once more when a provider signals
// rate limiting.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	applogger "StockScribe/pkg/logger"
)

const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = time.Second
)

// Fetcher retries one remote operation per Do call. Construct with New.
type Fetcher struct {
	maxAttempts    int
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	log            *applogger.Logger
}

type Option func(*Fetcher)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithInitialBackoff overrides the first wait interval.
func WithInitialBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.initialBackoff = d
		}
	}
}

// WithLogger attaches a structured logger for attempt diagnostics.
func WithLogger(l *applogger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithSleep replaces the inter-attempt sleep. Tests use this to observe the
// backoff schedule without waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = fn }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Do invokes op until it succeeds or the attempt budget is spent. The wait
// doubles after every failed attempt; a rate-limited failure doubles it once
// more before sleeping. On exhaustion the last observed error is returned.
func (f *Fetcher) Do(ctx context.Context, op func() error) error {
	var lastErr error
	wait := f.initialBackoff

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if RateLimited(err) {
			wait *= 2
			if f.log != nil {
				f.log.Warn("rate limit hit, extending backoff",
					applogger.Int("attempt", attempt),
					applogger.Duration("wait", wait))
			}
		}

		if attempt == f.maxAttempts {
			break
		}
		if f.log != nil {
			f.log.Debug("retrying after failure",
				applogger.Int("attempt", attempt),
				applogger.Duration("wait", wait),
				applogger.Error(err))
		}
		if serr := f.sleep(ctx, wait); serr != nil {
			return lastErr
		}
		wait *= 2
	}
	return lastErr
}

// Value runs op through f and returns its result.
func Value[T any](ctx context.Context, f *Fetcher, op func() (T, error)) (T, error) {
	var out T
	err := f.Do(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

type rateLimited interface{ RateLimited() bool }

// RateLimited reports whether err carries a too-many-requests signal, either
// typed or as a literal 429 in its text.
func RateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl rateLimited
	if errors.As(err, &rl) && rl.RateLimited() {
		return true
	}
	return strings.Contains(err.Error(), "429")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
