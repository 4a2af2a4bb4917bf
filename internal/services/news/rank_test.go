package news

import (
	"fmt"
	"testing"
	"time"

	"StockScribe/internal/domain/models"
)

func TestRankOrdersMostRecentFirst(t *testing.T) {
	in := []models.NewsItem{item("a", 100), item("b", 300), item("c", 200)}
	got := Rank(in, TopK)
	want := []int64{300, 200, 100}
	for i, ts := range want {
		if got[i].Timestamp != ts {
			t.Fatalf("position %d: got ts %d, want %d", i, got[i].Timestamp, ts)
		}
	}
	// input order untouched
	if in[0].Timestamp != 100 {
		t.Fatalf("rank must not mutate its input")
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	var in []models.NewsItem
	for i := 0; i < 10; i++ {
		in = append(in, item(fmt.Sprintf("headline %d", i), int64(i)))
	}
	got := Rank(in, TopK)
	if len(got) != 7 {
		t.Fatalf("expected 7 items, got %d", len(got))
	}
	if got[0].Timestamp != 9 {
		t.Fatalf("expected newest first, got ts %d", got[0].Timestamp)
	}
}

func TestRankStableOnEqualTimestamps(t *testing.T) {
	in := []models.NewsItem{item("first", 50), item("second", 50), item("third", 50)}
	got := Rank(in, TopK)
	if got[0].Title != "first" || got[1].Title != "second" || got[2].Title != "third" {
		t.Fatalf("equal timestamps must keep input order: %v", got)
	}
}

func TestFormatLines(t *testing.T) {
	at := time.Date(2025, 5, 30, 9, 15, 0, 0, time.UTC)
	in := []models.NewsItem{{
		Title:       "Apple unveils new chip",
		Source:      models.SourceYahoo,
		PublishedAt: at,
		Timestamp:   at.Unix(),
	}}
	got := FormatLines("AAPL", in)
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got))
	}
	if got[0] != "[2025-05-30] (Yahoo Finance) Apple unveils new chip" {
		t.Fatalf("unexpected line %q", got[0])
	}
}

func TestFormatLinesSentinelOnEmpty(t *testing.T) {
	got := FormatLines("AAPL", nil)
	if len(got) != 1 || got[0] != "No recent news available for AAPL" {
		t.Fatalf("unexpected sentinel %v", got)
	}
}
