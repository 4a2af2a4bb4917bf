// Package symbols serves the typeahead directory backing symbol search.
package symbols

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	applogger "StockScribe/pkg/logger"
)

// DefaultLimit caps search responses.
const DefaultLimit = 10

// Entry is one listed company in the directory file.
type Entry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Match is one search hit, with the display string the UI renders.
type Match struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// Directory holds the loaded symbol list. Loaded once at startup, read-only
// afterwards.
type Directory struct {
	entries []Entry
	log     *applogger.Logger
}

// Load reads path, a JSON array of {symbol, name} objects, and sorts it by
// symbol so search output is deterministic.
func Load(path string, log *applogger.Logger) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load symbol directory: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse symbol directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })

	if log != nil {
		log.Info("symbol directory loaded",
			applogger.String("path", path),
			applogger.Int("symbols", len(entries)))
	}
	return &Directory{entries: entries, log: log}, nil
}

// Len reports how many symbols are loaded.
func (d *Directory) Len() int { return len(d.entries) }

type scored struct {
	Match
	symPrefix  bool
	namePrefix bool
}

// Search returns up to limit entries whose symbol or name contains q,
// case-insensitive. Symbol-prefix matches rank first, then name-prefix,
// then plain substring hits; ties go to the shorter symbol, then
// alphabetical.
func (d *Directory) Search(q string, limit int) []Match {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var hits []scored
	for _, e := range d.entries {
		sym := strings.ToLower(e.Symbol)
		name := strings.ToLower(e.Name)
		if !strings.Contains(sym, q) && !strings.Contains(name, q) {
			continue
		}
		hits = append(hits, scored{
			Match: Match{
				Symbol:  e.Symbol,
				Name:    e.Name,
				Display: e.Symbol + " - " + e.Name,
			},
			symPrefix:  strings.HasPrefix(sym, q),
			namePrefix: strings.HasPrefix(name, q),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.symPrefix != b.symPrefix {
			return a.symPrefix
		}
		if a.namePrefix != b.namePrefix {
			return a.namePrefix
		}
		if len(a.Symbol) != len(b.Symbol) {
			return len(a.Symbol) < len(b.Symbol)
		}
		return a.Symbol < b.Symbol
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = h.Match
	}
	return out
}
