package logger

import (
	"testing"
	"time"
)

func TestRunCollectorCapturesTypedEvents(t *testing.T) {
	c := NewRunCollector()
	base := time.Date(2025, 6, 2, 14, 30, 5, 0, time.UTC)
	c.start = base
	step := 0
	c.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * 250 * time.Millisecond)
	}

	c.Info("Fetching stock data for %s", "AAPL")
	c.Success("Script generated successfully")
	c.Error("Yahoo Finance returned no items")

	evs := c.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	if evs[0].Type != EventInfo || evs[1].Type != EventSuccess || evs[2].Type != EventError {
		t.Fatalf("unexpected types %q %q %q", evs[0].Type, evs[1].Type, evs[2].Type)
	}
	if evs[0].Message != "Fetching stock data for AAPL" {
		t.Fatalf("unexpected message %q", evs[0].Message)
	}
	if evs[0].Elapsed != "+0.25s" {
		t.Fatalf("unexpected elapsed %q", evs[0].Elapsed)
	}
	if evs[0].Timestamp != "02:30:05 PM" {
		t.Fatalf("unexpected timestamp %q", evs[0].Timestamp)
	}
}

func TestRunCollectorSubscribe(t *testing.T) {
	c := NewRunCollector()
	ch, cancel := c.Subscribe(4)
	defer cancel()

	c.Info("step one")
	select {
	case ev := <-ch:
		if ev.Message != "step one" {
			t.Fatalf("unexpected message %q", ev.Message)
		}
	default:
		t.Fatalf("expected buffered event")
	}

	c.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	// events recorded after close are dropped
	c.Info("late")
	if n := len(c.Events()); n != 1 {
		t.Fatalf("expected 1 event after close, got %d", n)
	}
}
