package util

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	at := time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(at); got != "2025-03-07" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestFormatDateConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	at := time.Date(2025, 3, 7, 22, 0, 0, 0, loc)
	if got := FormatDate(at); got != "2025-03-08" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	from, to := DayWindow(now, 30)
	if from != "2025-03-01" || to != "2025-03-31" {
		t.Fatalf("unexpected window %s..%s", from, to)
	}
}
