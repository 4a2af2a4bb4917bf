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
)

func TestYahooFetchScoresAndFilters(t *testing.T) {
	now := time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-2 * time.Hour).Unix()
	stale := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	video := now.AddDate(0, 0, -3).Unix()

	payload := fmt.Sprintf(`{"news":[
		{"title":" Apple unveils new chip ","publisher":"TechWire","link":"https://y.test/a","providerPublishTime":%d,"type":"STORY","sentiment":{"score":0.4}},
		{"title":"Old story","link":"https://y.test/b","providerPublishTime":%d,"type":"STORY"},
		{"link":"https://y.test/c","providerPublishTime":%d,"type":"STORY"},
		{"title":"Earnings call replay","link":"https://y.test/d","providerPublishTime":%d,"type":"VIDEO"}
	]}`, fresh, stale, fresh, video)

	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q") + "/" + r.URL.Query().Get("newsCount")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client, fetcher := testDeps()
	y := NewYahoo(srv.URL, client, fetcher, nil)
	y.now = func() time.Time { return now }

	items, err := y.Fetch(context.Background(), "AAPL", domrepo.Period1Mo)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/v1/finance/search" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery != "AAPL/10" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Apple unveils new chip" {
		t.Errorf("title not trimmed: %q", first.Title)
	}
	if first.Source != models.SourceYahoo {
		t.Errorf("unexpected source %q", first.Source)
	}
	if first.Relevance != 4 {
		t.Errorf("expected story+fresh+sentiment score 4, got %d", first.Relevance)
	}
	if first.Timestamp != fresh {
		t.Errorf("unexpected timestamp %d", first.Timestamp)
	}
	if first.Category != "STORY" {
		t.Errorf("unexpected category %q", first.Category)
	}

	second := items[1]
	if second.Relevance != 0 {
		t.Errorf("expected score 0 for old video, got %d", second.Relevance)
	}
}

func TestYahooFetchCapsRawPayload(t *testing.T) {
	now := time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
	ts := now.Add(-time.Hour).Unix()

	payload := `{"news":[`
	for i := 0; i < 12; i++ {
		if i > 0 {
			payload += ","
		}
		payload += fmt.Sprintf(`{"title":"story %d","link":"https://y.test/%d","providerPublishTime":%d,"type":"STORY"}`, i, i, ts)
	}
	payload += `]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	client, fetcher := testDeps()
	y := NewYahoo(srv.URL, client, fetcher, nil)
	y.now = func() time.Time { return now }

	items, err := y.Fetch(context.Background(), "AAPL", domrepo.Period1Mo)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != MaxItemsPerSource {
		t.Fatalf("expected cap at %d, got %d", MaxItemsPerSource, len(items))
	}
}

func TestYahooFetchWrapsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, fetcher := testDeps()
	y := NewYahoo(srv.URL, client, fetcher, nil)

	_, err := y.Fetch(context.Background(), "AAPL", domrepo.Period1Mo)
	if err == nil {
		t.Fatalf("expected error")
	}
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Source != models.SourceYahoo || fe.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected fetch error %+v", fe)
	}
}
