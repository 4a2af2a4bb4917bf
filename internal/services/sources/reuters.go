package sources

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/retry"
)

const DefaultReutersBaseURL = "https://www.reuters.com"

// reutersCanonicalURL prefixes the relative hrefs on company pages so stored
// links stay valid regardless of which mirror served the page.
const reutersCanonicalURL = "https://www.reuters.com"

// Reuters scrapes the company news page. Tier-two fallback alongside
// MarketWatch.
type Reuters struct {
	httpBase
	baseURL   string
	userAgent string
}

func NewReuters(baseURL string, client *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) *Reuters {
	if baseURL == "" {
		baseURL = DefaultReutersBaseURL
	}
	return &Reuters{
		httpBase:  newHTTPBase(client, fetcher, log),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: browserUserAgent,
	}
}

func (r *Reuters) Name() models.Source { return models.SourceReuters }

// SetUserAgent overrides the scrape User-Agent. Empty keeps the default.
func (r *Reuters) SetUserAgent(ua string) {
	if ua != "" {
		r.userAgent = ua
	}
}

// Fetch scrapes up to MaxItemsPerSource story cards from the company page.
// Cards without a heading, timestamp, or parseable datetime are skipped.
func (r *Reuters) Fetch(ctx context.Context, symbol string, _ domrepo.Period) ([]models.NewsItem, error) {
	page, err := r.getHTML(ctx, r.Name(), &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     r.baseURL + "/companies/" + strings.ToUpper(symbol) + ".O",
		Headers: map[string]string{"User-Agent": r.userAgent},
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &models.ParseError{Source: r.Name(), Err: err}
	}

	var items []models.NewsItem
	doc.Find(`div[data-testid="MediaStoryCard"]`).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= MaxItemsPerSource {
			return false
		}
		heading := card.Find(`a[data-testid="Heading"]`).First()
		title := strings.TrimSpace(heading.Text())
		stamp, _ := card.Find("time").First().Attr("datetime")
		if title == "" || stamp == "" {
			return true
		}
		published, perr := time.Parse(time.RFC3339, stamp)
		if perr != nil {
			return true
		}

		href, _ := heading.Attr("href")
		url := href
		if strings.HasPrefix(href, "/") {
			url = reutersCanonicalURL + href
		}

		items = append(items, models.NewsItem{
			Title:       title,
			URL:         url,
			Source:      models.SourceReuters,
			PublishedAt: published,
			Timestamp:   published.Unix(),
		})
		return true
	})
	return items, nil
}
