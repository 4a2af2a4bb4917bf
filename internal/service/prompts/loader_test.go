package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func TestBuildRendersMonthlyTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "monthly_prompt.tmpl",
		"Write about {{.CompanyName}} ({{.Symbol}}): {{.Trend}}, {{.ChangePercentage}}%, volatility {{.Volatility}}.\n{{.ImpactTable}}")
	writeTemplate(t, dir, "long_term_prompt.tmpl", "LONG {{.Symbol}}")

	l := NewLoader(dir, time.Minute, nil)
	out, err := l.Build(domrepo.Period1Mo, &Params{
		CompanyName:      "Apple Inc",
		Symbol:           "AAPL",
		Trend:            "moderately up",
		ChangePercentage: 1.33,
		Volatility:       "4.61%",
		ImpactTable:      "| Date |",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := "Write about Apple Inc (AAPL): moderately up, 1.33%, volatility 4.61%.\n| Date |"
	if out != want {
		t.Fatalf("unexpected prompt:\n%q\nwant:\n%q", out, want)
	}
}

func TestBuildPicksLongTermForOtherPeriods(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "monthly_prompt.tmpl", "MONTHLY")
	writeTemplate(t, dir, "long_term_prompt.tmpl", "LONG {{.Period}}")

	l := NewLoader(dir, time.Minute, nil)
	for _, p := range []domrepo.Period{domrepo.Period3Mo, domrepo.Period6Mo, domrepo.Period1Y} {
		out, err := l.Build(p, &Params{Period: string(p)})
		if err != nil {
			t.Fatalf("build %s: %v", p, err)
		}
		if out != "LONG "+string(p) {
			t.Errorf("period %s rendered %q", p, out)
		}
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	l := NewLoader(t.TempDir(), time.Minute, nil)
	_, err := l.Build(domrepo.Period1Mo, &Params{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os error, got %v", err)
	}
}

func TestBuildCachesParsedTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "monthly_prompt.tmpl", "first")

	l := NewLoader(dir, time.Minute, nil)
	if out, err := l.Build(domrepo.Period1Mo, &Params{}); err != nil || out != "first" {
		t.Fatalf("initial build: %q, %v", out, err)
	}

	// A rewrite inside the TTL window is not picked up.
	writeTemplate(t, dir, "monthly_prompt.tmpl", "second")
	out, err := l.Build(domrepo.Period1Mo, &Params{})
	if err != nil {
		t.Fatalf("cached build: %v", err)
	}
	if out != "first" {
		t.Fatalf("cache miss, got %q", out)
	}
}

func TestFromAnalysisDefaults(t *testing.T) {
	a := &models.PriceAnalysis{
		Movement:      models.MovementUp,
		Strength:      models.StrengthModerate,
		PercentChange: 1.33,
		DayHigh:       155,
		DayLow:        148,
		RangePercent:  4.61,
	}
	p := FromAnalysis("Apple Inc", "AAPL", domrepo.Period1Mo, a, "|table|", "news")
	if p.Trend != "moderately up" {
		t.Errorf("unexpected trend %q", p.Trend)
	}
	if p.Volatility != "4.61%" {
		t.Errorf("unexpected volatility %q", p.Volatility)
	}
	if p.VolumeTrend != "average" {
		t.Errorf("unexpected volume trend %q", p.VolumeTrend)
	}
	if p.ImpactTable != "|table|" || p.NewsSection != "news" {
		t.Errorf("sections not carried: %+v", p)
	}
}
