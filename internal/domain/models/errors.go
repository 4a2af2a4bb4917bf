package models

import (
	"fmt"
	"net/http"
)

// FetchError is a transient transport failure from one provider. The fetch
// layer retries it; adapters degrade to an empty result once the retry budget
// is spent.
type FetchError struct {
	Source     Source
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fetch failed with status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RateLimited reports whether the provider answered with HTTP 429.
func (e *FetchError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// ParseError flags a malformed provider payload or a missed page selector.
// A single bad item is skipped; a wholly bad source yields an empty list.
type ParseError struct {
	Source Source
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: parse failed: %v", e.Source, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError rejects invalid quote data. Unlike news failures it must
// surface to the caller so the user can be told the stock data was bad
// rather than shown a generic internal error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
