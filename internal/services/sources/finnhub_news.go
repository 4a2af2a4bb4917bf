package sources

import (
	"context"
	"strings"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/service/finnhub"
	"StockScribe/pkg/util"
)

// FinnhubNews adapts the shared Finnhub client into a news provider,
// scoring and capping its company-news feed.
type FinnhubNews struct {
	client *finnhub.Client
	now    func() time.Time
}

func NewFinnhubNews(client *finnhub.Client) *FinnhubNews {
	return &FinnhubNews{client: client, now: time.Now}
}

func (f *FinnhubNews) Name() models.Source { return models.SourceFinnhub }

// Fetch returns up to MaxItemsPerSource articles published inside the
// period window ending today.
func (f *FinnhubNews) Fetch(ctx context.Context, symbol string, period domrepo.Period) ([]models.NewsItem, error) {
	now := f.now()
	from, to := util.DayWindow(now, period.Days())

	raw, err := f.client.CompanyNews(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	for _, a := range capItems(raw) {
		if a.Headline == "" || a.Datetime <= 0 {
			continue
		}
		published := time.Unix(a.Datetime, 0)

		score := 0
		if a.Category == "company news" {
			score++
		}
		if now.Sub(published) < 24*time.Hour {
			score += 2
		}
		if relatedContains(a.Related, symbol) {
			score++
		}

		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(a.Headline),
			URL:         a.URL,
			Source:      models.SourceFinnhub,
			PublishedAt: published,
			Timestamp:   a.Datetime,
			Relevance:   score,
			Category:    a.Category,
		})
	}
	return items, nil
}

// relatedContains checks for the exact upper-cased symbol among the
// comma-separated tickers Finnhub tags an article with.
func relatedContains(related, symbol string) bool {
	if related == "" {
		return false
	}
	up := strings.ToUpper(symbol)
	for _, tok := range strings.Split(related, ",") {
		if tok == up {
			return true
		}
	}
	return false
}
