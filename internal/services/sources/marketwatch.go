package sources

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/retry"
)

const DefaultMarketWatchBaseURL = "https://www.marketwatch.com"

// MarketWatch scrapes the quote page article list. Tier-two fallback, only
// consulted when the API providers return nothing.
type MarketWatch struct {
	httpBase
	baseURL   string
	userAgent string
}

func NewMarketWatch(baseURL string, client *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) *MarketWatch {
	if baseURL == "" {
		baseURL = DefaultMarketWatchBaseURL
	}
	return &MarketWatch{
		httpBase:  newHTTPBase(client, fetcher, log),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: browserUserAgent,
	}
}

func (m *MarketWatch) Name() models.Source { return models.SourceMarketWatch }

// SetUserAgent overrides the scrape User-Agent. Empty keeps the default.
func (m *MarketWatch) SetUserAgent(ua string) {
	if ua != "" {
		m.userAgent = ua
	}
}

// Fetch scrapes up to MaxItemsPerSource article cards from the symbol's
// quote page. Cards missing either a headline link or a timestamp are
// skipped; an unrecognized timestamp counts as just published.
func (m *MarketWatch) Fetch(ctx context.Context, symbol string, _ domrepo.Period) ([]models.NewsItem, error) {
	page, err := m.getHTML(ctx, m.Name(), &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     m.baseURL + "/investing/stock/" + strings.ToLower(symbol),
		Headers: map[string]string{"User-Agent": m.userAgent},
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &models.ParseError{Source: m.Name(), Err: err}
	}

	now := m.now()
	var items []models.NewsItem
	doc.Find("div.article__content").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= MaxItemsPerSource {
			return false
		}
		link := card.Find("a.link").First()
		title := strings.TrimSpace(link.Text())
		stamp := strings.TrimSpace(card.Find("span.article__timestamp").First().Text())
		if title == "" || stamp == "" {
			return true
		}

		published := relativeTime(now, stamp)
		href, _ := link.Attr("href")

		items = append(items, models.NewsItem{
			Title:       title,
			URL:         href,
			Source:      models.SourceMarketWatch,
			PublishedAt: published,
			Timestamp:   published.Unix(),
		})
		return true
	})
	return items, nil
}

// relativeTime resolves stamps like "32 min ago" or "3 hours ago" against
// now. Absolute or unparseable stamps resolve to now.
func relativeTime(now time.Time, stamp string) time.Time {
	fields := strings.Fields(stamp)
	if len(fields) == 0 {
		return now
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return now
	}
	switch {
	case strings.Contains(stamp, "min"):
		return now.Add(-time.Duration(n) * time.Minute)
	case strings.Contains(stamp, "hour"):
		return now.Add(-time.Duration(n) * time.Hour)
	}
	return now
}
