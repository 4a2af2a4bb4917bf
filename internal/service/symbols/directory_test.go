package symbols

import (
	"os"
	"path/filepath"
	"testing"
)

func loadTestDirectory(t *testing.T) *Directory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocks.json")
	data := `[
		{"symbol":"AAPL","name":"Apple Inc"},
		{"symbol":"APP","name":"AppLovin Corporation"},
		{"symbol":"MSFT","name":"Microsoft Corporation"},
		{"symbol":"APLE","name":"Apple Hospitality REIT"},
		{"symbol":"T","name":"AT&T Inc"},
		{"symbol":"GOOG","name":"Alphabet Inc"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write directory: %v", err)
	}
	d, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return d
}

func TestSearchRanksSymbolPrefixFirst(t *testing.T) {
	d := loadTestDirectory(t)

	got := d.Search("ap", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(got), got)
	}
	// Symbol-prefix hits ordered by symbol length, then the name-only hit.
	if got[0].Symbol != "APP" || got[1].Symbol != "APLE" || got[2].Symbol != "AAPL" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].Display != "APP - AppLovin Corporation" {
		t.Errorf("unexpected display %q", got[0].Display)
	}
}

func TestSearchExactSymbol(t *testing.T) {
	d := loadTestDirectory(t)

	got := d.Search("AAPL", 10)
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("unexpected matches %+v", got)
	}
}

func TestSearchMatchesNameSubstring(t *testing.T) {
	d := loadTestDirectory(t)

	got := d.Search("corporation", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	for _, m := range got {
		if m.Symbol != "APP" && m.Symbol != "MSFT" {
			t.Errorf("unexpected match %+v", m)
		}
	}
}

func TestSearchEmptyQueryAndLimit(t *testing.T) {
	d := loadTestDirectory(t)

	if got := d.Search("  ", 10); got != nil {
		t.Fatalf("blank query should match nothing, got %+v", got)
	}
	if got := d.Search("a", 2); len(got) != 2 {
		t.Fatalf("limit not applied, got %d", len(got))
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	if err := os.WriteFile(path, []byte(`{"AAPL":"Apple"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
