package news

import (
	"fmt"
	"sort"

	"StockScribe/internal/domain/models"
	"StockScribe/pkg/util"
)

// TopK is the number of headlines handed to the prompt builder.
const TopK = 7

// Rank orders items most-recent-first and truncates to the top k. Relevance
// stays attached per item; recency decides the cross-source ordering.
func Rank(items []models.NewsItem, k int) []models.NewsItem {
	if k <= 0 {
		k = TopK
	}
	out := make([]models.NewsItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// FormatLines renders one line per item as "[YYYY-MM-DD] (source) title".
// With no items it degrades to the single no-news sentinel for the symbol.
func FormatLines(symbol string, items []models.NewsItem) []string {
	if len(items) == 0 {
		return []string{NoNewsSentinel(symbol)}
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("[%s] (%s) %s",
			util.FormatDate(it.PublishedAt), it.Source.Display(), it.Title))
	}
	return lines
}

// NoNewsSentinel is the terminal no-results line; an outcome, not an error.
func NoNewsSentinel(symbol string) string {
	return fmt.Sprintf("No recent news available for %s", symbol)
}
