// Package prompts loads and renders the script generation prompt templates.
package prompts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/template"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	applogger "StockScribe/pkg/logger"
)

const (
	monthlyTemplate  = "monthly_prompt.tmpl"
	longTermTemplate = "long_term_prompt.tmpl"
)

// Params carries everything the script templates can reference.
type Params struct {
	CompanyName      string
	Symbol           string
	Period           string
	Trend            string
	ChangePercentage float64
	High             float64
	Low              float64
	Volatility       string
	VolumeTrend      string
	ImpactTable      string
	NewsSection      string
}

// FromAnalysis assembles template params from an analysis. VolumeTrend is
// the literal "average": quote data carries no volume.
func FromAnalysis(companyName, symbol string, period domrepo.Period, a *models.PriceAnalysis, impactTable, newsSection string) *Params {
	return &Params{
		CompanyName:      companyName,
		Symbol:           symbol,
		Period:           string(period),
		Trend:            a.Trend(),
		ChangePercentage: a.PercentChange,
		High:             a.DayHigh,
		Low:              a.DayLow,
		Volatility:       fmt.Sprintf("%.2f%%", a.RangePercent),
		VolumeTrend:      "average",
		ImpactTable:      impactTable,
		NewsSection:      newsSection,
	}
}

type parsedTemplate struct {
	tpl      *template.Template
	expireAt time.Time
}

// Loader resolves, parses, and caches the prompt templates on disk. Parsed
// templates expire after ttl so edits to the files show up without a restart.
type Loader struct {
	dir string
	ttl time.Duration
	log *applogger.Logger

	mu     sync.Mutex
	parsed map[string]parsedTemplate
}

func NewLoader(dir string, ttl time.Duration, log *applogger.Logger) *Loader {
	return &Loader{dir: dir, ttl: ttl, log: log, parsed: make(map[string]parsedTemplate)}
}

// Build renders the period's template with params.
func (l *Loader) Build(period domrepo.Period, p *Params) (string, error) {
	tpl, err := l.load(templateFor(period))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// templateFor picks the monthly prompt for 1mo and the long-term prompt for
// every other period.
func templateFor(period domrepo.Period) string {
	if period == domrepo.Period1Mo {
		return monthlyTemplate
	}
	return longTermTemplate
}

func (l *Loader) load(name string) (*template.Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.parsed[name]; ok {
		if p.expireAt.IsZero() || time.Now().Before(p.expireAt) {
			return p.tpl, nil
		}
		delete(l.parsed, name)
	}

	path := filepath.Join(l.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}
	tpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	var expireAt time.Time
	if l.ttl > 0 {
		expireAt = time.Now().Add(l.ttl)
	}
	l.parsed[name] = parsedTemplate{tpl: tpl, expireAt: expireAt}
	if l.log != nil {
		l.log.Debug("prompt template loaded", applogger.String("template", name))
	}
	return tpl, nil
}
