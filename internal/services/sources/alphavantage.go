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

const DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// alphaVantageTimeLayout matches time_published in the NEWS_SENTIMENT feed,
// e.g. "20250530T143000". The feed carries no zone, values are UTC.
const alphaVantageTimeLayout = "20060102T150405"

// AlphaVantage pulls the NEWS_SENTIMENT feed. Optional provider; it only
// joins the rotation when an API key is configured.
type AlphaVantage struct {
	httpBase
	baseURL string
	apiKey  string
}

func NewAlphaVantage(baseURL, apiKey string, client *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	return &AlphaVantage{
		httpBase: newHTTPBase(client, fetcher, log),
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
	}
}

func (a *AlphaVantage) Name() models.Source { return models.SourceAlphaVantage }

type alphaVantageFeed struct {
	Feed []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		TimePublished string `json:"time_published"`
	} `json:"feed"`
}

// Fetch returns up to MaxItemsPerSource feed entries. The feed endpoint has
// no period filter, so the window argument is unused here; malformed entries
// are skipped rather than failing the source.
func (a *AlphaVantage) Fetch(ctx context.Context, symbol string, _ domrepo.Period) ([]models.NewsItem, error) {
	var resp alphaVantageFeed
	err := a.getJSON(ctx, a.Name(), &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL + "/query",
		QueryParams: map[string][]string{
			"function": {"NEWS_SENTIMENT"},
			"tickers":  {symbol},
			"apikey":   {a.apiKey},
			"limit":    {strconv.Itoa(MaxItemsPerSource)},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	for _, entry := range capItems(resp.Feed) {
		if entry.Title == "" {
			continue
		}
		published, perr := time.Parse(alphaVantageTimeLayout, entry.TimePublished)
		if perr != nil {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(entry.Title),
			URL:         entry.URL,
			Source:      models.SourceAlphaVantage,
			PublishedAt: published,
			Timestamp:   published.Unix(),
		})
	}
	return items, nil
}
