package sources

import (
	"context"
	"strconv"
	"strings"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/retry"
)

const DefaultYahooBaseURL = "https://query2.finance.yahoo.com"

// Yahoo pulls headlines from the Yahoo Finance search endpoint. It is a
// tier-one provider: cheap, unauthenticated, and usually fresh.
type Yahoo struct {
	httpBase
	baseURL string
}

func NewYahoo(baseURL string, client *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &Yahoo{
		httpBase: newHTTPBase(client, fetcher, log),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (y *Yahoo) Name() models.Source { return models.SourceYahoo }

type yahooSearchResponse struct {
	News []yahooNewsItem `json:"news"`
}

type yahooNewsItem struct {
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Link        string `json:"link"`
	PublishTime int64  `json:"providerPublishTime"`
	Type        string `json:"type"`
	Sentiment   struct {
		Score float64 `json:"score"`
	} `json:"sentiment"`
}

// Fetch returns up to MaxItemsPerSource recent headlines for symbol. The raw
// payload is capped first and then filtered to the period window, so a page
// of stale stories can legitimately come back empty.
func (y *Yahoo) Fetch(ctx context.Context, symbol string, period domrepo.Period) ([]models.NewsItem, error) {
	var resp yahooSearchResponse
	err := y.getJSON(ctx, y.Name(), &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    y.baseURL + "/v1/finance/search",
		QueryParams: map[string][]string{
			"q":         {symbol},
			"newsCount": {strconv.Itoa(MaxItemsPerSource)},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	now := y.now()
	cutoff := now.AddDate(0, 0, -period.Days())

	var items []models.NewsItem
	for _, raw := range capItems(resp.News) {
		if raw.Title == "" || raw.PublishTime <= 0 {
			continue
		}
		published := time.Unix(raw.PublishTime, 0)
		if published.Before(cutoff) {
			continue
		}

		score := 0
		if raw.Type == "STORY" {
			score++
		}
		if now.Sub(published) < 24*time.Hour {
			score += 2
		}
		if raw.Sentiment.Score > 0 {
			score++
		}

		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(raw.Title),
			URL:         raw.Link,
			Source:      models.SourceYahoo,
			PublishedAt: published,
			Timestamp:   raw.PublishTime,
			Relevance:   score,
			Category:    raw.Type,
		})
	}
	return items, nil
}
