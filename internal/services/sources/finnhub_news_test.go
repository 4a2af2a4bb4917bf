package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/service/finnhub"
)

func TestFinnhubNewsFetchScoresArticles(t *testing.T) {
	now := time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-3 * time.Hour).Unix()
	older := now.AddDate(0, 0, -5).Unix()

	payload := fmt.Sprintf(`[
		{"category":"company news","datetime":%d,"headline":"  Apple ships record units  ","related":"AAPL,MSFT","url":"https://f.test/a"},
		{"category":"top news","datetime":%d,"headline":"Sector roundup","related":"TSLA","url":"https://f.test/b"},
		{"category":"company news","datetime":0,"headline":"No timestamp","related":"AAPL","url":"https://f.test/c"}
	]`, fresh, older)

	var gotToken, gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Finnhub-Token")
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client, fetcher := testDeps()
	f := NewFinnhubNews(finnhub.New(srv.URL, "key123", client, fetcher, nil))
	f.now = func() time.Time { return now }

	items, err := f.Fetch(context.Background(), "aapl", domrepo.Period1Mo)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotToken != "key123" {
		t.Fatalf("missing token header, got %q", gotToken)
	}
	if gotFrom != "2025-05-01" || gotTo != "2025-05-31" {
		t.Fatalf("unexpected window %s..%s", gotFrom, gotTo)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Apple ships record units" {
		t.Errorf("headline not trimmed: %q", first.Title)
	}
	if first.Source != models.SourceFinnhub {
		t.Errorf("unexpected source %q", first.Source)
	}
	if first.Relevance != 4 {
		t.Errorf("expected company+fresh+related score 4, got %d", first.Relevance)
	}
	if items[1].Relevance != 0 {
		t.Errorf("expected score 0, got %d", items[1].Relevance)
	}
}

func TestFinnhubNewsFetchReportsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, fetcher := testDeps()
	f := NewFinnhubNews(finnhub.New(srv.URL, "key123", client, fetcher, nil))

	_, err := f.Fetch(context.Background(), "AAPL", domrepo.Period1Mo)
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fe.RateLimited() {
		t.Fatalf("expected rate limited, got status %d", fe.StatusCode)
	}
}

func TestRelatedContains(t *testing.T) {
	cases := []struct {
		related, symbol string
		want            bool
	}{
		{"AAPL,MSFT", "aapl", true},
		{"AAPL,MSFT", "MSFT", true},
		{"TSLA", "AAPL", false},
		{"", "AAPL", false},
		{"AAPL2", "AAPL", false},
	}
	for _, c := range cases {
		if got := relatedContains(c.related, c.symbol); got != c.want {
			t.Errorf("relatedContains(%q, %q) = %v, want %v", c.related, c.symbol, got, c.want)
		}
	}
}
