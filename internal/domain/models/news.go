package models

import "time"

// Source identifies one news provider.
type Source string

const (
	SourceYahoo        Source = "yahoo-finance"
	SourceFinnhub      Source = "finnhub"
	SourceAlphaVantage Source = "alpha-vantage"
	SourceMarketWatch  Source = "marketwatch"
	SourceReuters      Source = "reuters"
)

// Display returns the provider name used in rendered news lines.
func (s Source) Display() string {
	switch s {
	case SourceYahoo:
		return "Yahoo Finance"
	case SourceFinnhub:
		return "Finnhub"
	case SourceAlphaVantage:
		return "Alpha Vantage"
	case SourceMarketWatch:
		return "MarketWatch"
	case SourceReuters:
		return "Reuters"
	default:
		return string(s)
	}
}

// NewsItem is one normalized headline. Items are immutable once built;
// duplicate suppression drops items, it never edits them.
type NewsItem struct {
	Title       string
	URL         string
	Source      Source
	PublishedAt time.Time
	Timestamp   int64 // epoch seconds, the ranking key
	Relevance   int   // provider-specific heuristic score
	Category    string
}
