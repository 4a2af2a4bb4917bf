// Package finnhub is the REST client for the Finnhub API. One instance is
// shared by the quote path and the company-news adapter.
package finnhub

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockScribe/internal/domain/models"
	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/retry"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// Client calls the Finnhub REST API for quotes, company profiles, and
// company news.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	fetcher *retry.Fetcher
	log     *applogger.Logger
	now     func() time.Time
}

// New creates a Finnhub client. The key is trimmed because a stray newline
// in the env var shows up as an auth failure that is miserable to debug.
func New(baseURL, apiKey string, httpClient *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	if fetcher == nil {
		fetcher = retry.New()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		http:    httpClient,
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
	}
}

type quoteResponse struct {
	Open      float64  `json:"o"`
	High      float64  `json:"h"`
	Low       float64  `json:"l"`
	Current   *float64 `json:"c"`
	PrevClose float64  `json:"pc"`
	Change    float64  `json:"d"`
	ChangePct float64  `json:"dp"`
}

// Quote fetches the current quote for symbol. A payload without the current
// price key is rejected here; zero prices pass through for the analyzer to
// judge.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp quoteResponse
	err := c.fetcher.Do(ctx, func() error {
		resp = quoteResponse{}
		return c.http.SendAndParse(ctx, c.request("/quote", map[string][]string{
			"symbol": {symbol},
		}), &resp)
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	if resp.Current == nil {
		return nil, &models.ValidationError{Field: "c", Reason: "missing from quote response"}
	}
	return &models.Quote{
		Open:          resp.Open,
		High:          resp.High,
		Low:           resp.Low,
		Current:       *resp.Current,
		PrevClose:     resp.PrevClose,
		Change:        resp.Change,
		ChangePercent: resp.ChangePct,
		ObservedAt:    c.now(),
	}, nil
}

type profileResponse struct {
	Name string `json:"name"`
}

// CompanyName resolves a display name for symbol, falling back to the
// symbol itself when the profile lookup fails or comes back empty.
func (c *Client) CompanyName(ctx context.Context, symbol string) string {
	var resp profileResponse
	err := c.fetcher.Do(ctx, func() error {
		resp = profileResponse{}
		return c.http.SendAndParse(ctx, c.request("/stock/profile2", map[string][]string{
			"symbol": {symbol},
		}), &resp)
	})
	if err != nil || resp.Name == "" {
		if err != nil && c.log != nil {
			c.log.Debug("company profile lookup failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
		}
		return symbol
	}
	return resp.Name
}

// Article is one raw company-news entry as Finnhub returns it.
type Article struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Related  string `json:"related"`
	URL      string `json:"url"`
}

// CompanyNews lists articles for symbol published between from and to,
// both formatted YYYY-MM-DD.
func (c *Client) CompanyNews(ctx context.Context, symbol, from, to string) ([]Article, error) {
	var articles []Article
	err := c.fetcher.Do(ctx, func() error {
		articles = nil
		return c.http.SendAndParse(ctx, c.request("/company-news", map[string][]string{
			"symbol": {symbol},
			"from":   {from},
			"to":     {to},
		}), &articles)
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return articles, nil
}

// request assembles options with auth in both the token param and the
// X-Finnhub-Token header, which is what their gateway expects.
func (c *Client) request(path string, query map[string][]string) *xhttp.RequestOptions {
	q := map[string][]string{"token": {c.apiKey}}
	for k, v := range query {
		q[k] = v
	}
	return &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"X-Finnhub-Token": c.apiKey,
			"Accept":          "application/json",
		},
		QueryParams: q,
	}
}

func wrapErr(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &models.FetchError{Source: models.SourceFinnhub, StatusCode: se.Code, Err: err}
	}
	return &models.FetchError{Source: models.SourceFinnhub, Err: err}
}
