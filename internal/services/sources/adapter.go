// Package sources holds one adapter per external news provider. Every
// adapter normalizes its provider's payload into models.NewsItem values,
// caps its own output, and reports failures as typed errors for the
// pipeline to degrade on.
package sources

import (
	"context"
	"errors"
	"time"

	"StockScribe/internal/domain/models"
	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/retry"
)

// MaxItemsPerSource caps each provider's raw output before the shared
// pipeline stages run.
const MaxItemsPerSource = 10

// browserUserAgent is sent on page scrapes; several providers refuse
// requests without one.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"

// httpBase is the shared foundation for provider clients: one HTTP client,
// one retry budget, one logger, one clock.
type httpBase struct {
	client  *xhttp.Client
	fetcher *retry.Fetcher
	log     *applogger.Logger
	now     func() time.Time
}

func newHTTPBase(client *xhttp.Client, fetcher *retry.Fetcher, log *applogger.Logger) httpBase {
	if client == nil {
		client = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	if fetcher == nil {
		fetcher = retry.New()
	}
	return httpBase{client: client, fetcher: fetcher, log: log, now: time.Now}
}

// getJSON fetches through the retry budget and decodes into dest. Transport
// and status failures come back as *models.FetchError.
func (b httpBase) getJSON(ctx context.Context, src models.Source, opts *xhttp.RequestOptions, dest interface{}) error {
	err := b.fetcher.Do(ctx, func() error {
		return b.client.SendAndParse(ctx, opts, dest)
	})
	if err != nil {
		return fetchErr(src, err)
	}
	return nil
}

// getHTML fetches a page body as text through the retry budget.
func (b httpBase) getHTML(ctx context.Context, src models.Source, opts *xhttp.RequestOptions) (string, error) {
	var body []byte
	err := b.fetcher.Do(ctx, func() error {
		body = nil
		return b.client.SendAndParse(ctx, opts, &body)
	})
	if err != nil {
		return "", fetchErr(src, err)
	}
	return string(body), nil
}

func fetchErr(src models.Source, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &models.FetchError{Source: src, StatusCode: se.Code, Err: err}
	}
	return &models.FetchError{Source: src, Err: err}
}

// capItems truncates raw provider payloads to the per-source budget.
func capItems[T any](items []T) []T {
	if len(items) > MaxItemsPerSource {
		return items[:MaxItemsPerSource]
	}
	return items
}
