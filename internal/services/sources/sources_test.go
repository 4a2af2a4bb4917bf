package sources

import (
	"time"

	xhttp "StockScribe/pkg/http"
	"StockScribe/pkg/retry"
)

// testDeps builds the client and single-attempt fetcher the adapter tests
// share, so failures surface immediately instead of retrying.
func testDeps() (*xhttp.Client, *retry.Fetcher) {
	client := xhttp.NewClient(xhttp.WithTimeout(2 * time.Second))
	fetcher := retry.New(retry.WithMaxAttempts(1))
	return client, fetcher
}
