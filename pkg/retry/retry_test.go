package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type tooMany struct{}

func (tooMany) Error() string     { return "too many requests" }
func (tooMany) RateLimited() bool { return true }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	var sleeps []time.Duration
	f := New(WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))

	calls := 0
	got, err := Value(context.Background(), f, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "payload", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "payload" {
		t.Fatalf("unexpected value %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(sleeps))
	}
	if sleeps[1] < sleeps[0] {
		t.Fatalf("second sleep %v shorter than first %v", sleeps[1], sleeps[0])
	}
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	f := New(WithSleep(func(_ context.Context, _ time.Duration) error { return nil }))

	last := errors.New("still down")
	calls := 0
	err := f.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("first failure")
		}
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoExtendsBackoffWhenRateLimited(t *testing.T) {
	var sleeps []time.Duration
	f := New(WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))

	calls := 0
	err := f.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return tooMany{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Fatalf("expected one doubled sleep, got %v", sleeps)
	}
}

func TestRateLimitedDetectsStatusText(t *testing.T) {
	if !RateLimited(errors.New("unexpected status 429: slow down")) {
		t.Fatalf("expected text match")
	}
	if RateLimited(errors.New("unexpected status 500: boom")) {
		t.Fatalf("did not expect match")
	}
	if RateLimited(nil) {
		t.Fatalf("nil must not match")
	}
}

func TestDoStopsWhenSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := New(WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	boom := errors.New("boom")
	calls := 0
	err := f.Do(ctx, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
