package news

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"StockScribe/internal/domain/models"
)

// DefaultSimilarityThreshold matches the historical tuning of the pipeline.
// Tunable, not load-bearing for correctness.
const DefaultSimilarityThreshold = 0.85

// Deduper drops items whose titles are near-duplicates of earlier ones.
type Deduper struct {
	threshold float64
}

func NewDeduper(threshold float64) *Deduper {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduper{threshold: threshold}
}

// Dedupe returns the items whose titles are not similar to any previously
// seen title, preserving first-seen order. Items are dropped, never edited.
func (d *Deduper) Dedupe(items []models.NewsItem) []models.NewsItem {
	if len(items) == 0 {
		return nil
	}
	seen := make([]string, 0, len(items))
	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		title := strings.ToLower(item.Title)
		dup := false
		for _, prev := range seen {
			if similarity(title, prev) > d.threshold {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, title)
			out = append(out, item)
		}
	}
	return out
}

// similarity scores two lowercased titles. The base score is the character
// sequence ratio; because that ratio punishes one headline merely extending
// the other with a suffix, the matched count is also normalized by the
// shorter title and the larger score wins.
func similarity(a, b string) float64 {
	ca, cb := chars(a), chars(b)
	m := difflib.NewMatcher(ca, cb)
	score := m.Ratio()

	shorter := len(ca)
	if len(cb) < shorter {
		shorter = len(cb)
	}
	if shorter == 0 {
		return score
	}
	matched := 0
	for _, bl := range m.GetMatchingBlocks() {
		matched += bl.Size
	}
	if c := float64(matched) / float64(shorter); c > score {
		score = c
	}
	return score
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
