package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	domsvc "StockScribe/internal/domain/service"
	mid "StockScribe/internal/middleware"
	"StockScribe/internal/service/prompts"
	"StockScribe/internal/services/analysis"
	"StockScribe/pkg/cache"
	applogger "StockScribe/pkg/logger"
)

var testNow = time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)

type fakeQuotes struct {
	quote *models.Quote
	err   error
	name  string
	calls int
}

func (f *fakeQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeQuotes) CompanyName(ctx context.Context, symbol string) string {
	if f.name != "" {
		return f.name
	}
	return symbol
}

type fakeNewsSource struct {
	name  models.Source
	items []models.NewsItem
}

func (f *fakeNewsSource) Name() models.Source { return f.name }

func (f *fakeNewsSource) Fetch(ctx context.Context, symbol string, period domrepo.Period) ([]models.NewsItem, error) {
	return f.items, nil
}

type fakeWriter struct {
	script  string
	err     error
	prompts []string
}

func (w *fakeWriter) Name() string { return "fake" }

func (w *fakeWriter) Generate(ctx context.Context, prompt string) (string, error) {
	w.prompts = append(w.prompts, prompt)
	if w.err != nil {
		return "", w.err
	}
	return w.script, nil
}

type fakeStore struct {
	saved      []*models.Generation
	saveErr    error
	lastSymbol string
	lastLimit  int
}

func (s *fakeStore) Init(ctx context.Context) error { return nil }

func (s *fakeStore) Save(ctx context.Context, g *models.Generation) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, g)
	return nil
}

func (s *fakeStore) History(ctx context.Context, symbol string, limit int) ([]*models.Generation, error) {
	s.lastSymbol = symbol
	s.lastLimit = limit
	return s.saved, nil
}

func (s *fakeStore) Health(ctx context.Context) error { return nil }

func (s *fakeStore) Close() error { return nil }

type stubMetrics struct {
	errs   []string
	stored []string
}

func (m *stubMetrics) RecordGenerationStored(backend, symbol string) {
	m.stored = append(m.stored, backend+"/"+symbol)
}
func (m *stubMetrics) RecordError(kind string)                  { m.errs = append(m.errs, kind) }
func (m *stubMetrics) RecordSourceItems(source string, n int)   {}
func (m *stubMetrics) RecordLatency(op string, seconds float64) {}

func writePromptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	monthly := "MONTHLY {{.CompanyName}} ({{.Symbol}}) {{.Period}}: {{.Trend}} {{.ChangePercentage}}% " +
		"high {{.High}} low {{.Low}} vol {{.Volatility}} volume {{.VolumeTrend}}\n{{.ImpactTable}}\n{{.NewsSection}}"
	long := strings.Replace(monthly, "MONTHLY", "LONGTERM", 1)
	for name, body := range map[string]string{
		"monthly_prompt.tmpl":   monthly,
		"long_term_prompt.tmpl": long,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	return dir
}

type generatorFixture struct {
	quotes  *fakeQuotes
	writer  *fakeWriter
	store   *fakeStore
	metrics *stubMetrics
	gen     *ScriptGenerator
}

func newGeneratorFixture(t *testing.T, sources []*fakeNewsSource, opts ...GeneratorOption) *generatorFixture {
	t.Helper()

	f := &generatorFixture{
		quotes: &fakeQuotes{
			quote: &models.Quote{
				Open: 148.5, High: 151.0, Low: 147.5, Current: 150.25,
				PrevClose: 148.0, Change: 2.25, ChangePercent: 1.52,
				ObservedAt: testNow,
			},
			name: "Apple Inc",
		},
		writer:  &fakeWriter{script: "A fine script about the stock."},
		store:   &fakeStore{},
		metrics: &stubMetrics{},
	}

	srcs := make([]domsvc.NewsSource, 0, len(sources))
	for _, s := range sources {
		srcs = append(srcs, s)
	}
	pipeline := mid.NewFetchPipeline(srcs, nil, f.metrics)

	loader := prompts.NewLoader(writePromptDir(t), time.Minute, nil)
	proc := NewGenerationProcessor(nil, f.store, f.metrics, "clickhouse")

	base := []GeneratorOption{
		WithGeneratorClock(func() time.Time { return testNow }),
		WithIDFunc(func() string { return "gen-123" }),
	}
	f.gen = NewScriptGenerator(f.quotes, analysis.NewAnalyzer(analysis.WithClock(func() time.Time { return testNow })),
		pipeline, loader, f.writer, proc, f.metrics, append(base, opts...)...)
	return f
}

func TestGenerateProducesScriptAndPersists(t *testing.T) {
	src := &fakeNewsSource{name: models.SourceFinnhub, items: []models.NewsItem{{
		Title:       "Supplier expands production",
		Source:      models.SourceFinnhub,
		PublishedAt: testNow.Add(-2 * time.Hour),
		Timestamp:   testNow.Add(-2 * time.Hour).Unix(),
	}}}

	f := newGeneratorFixture(t, []*fakeNewsSource{src})
	res, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "aapl", Period: domrepo.Period1Mo})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.ID != "gen-123" || res.Symbol != "AAPL" || res.Period != domrepo.Period1Mo {
		t.Errorf("identity = %s/%s/%s, want gen-123/AAPL/1mo", res.ID, res.Symbol, res.Period)
	}
	if res.CompanyName != "Apple Inc" {
		t.Errorf("company = %q, want Apple Inc", res.CompanyName)
	}
	if res.Script != "A fine script about the stock." {
		t.Errorf("script = %q", res.Script)
	}
	if want := "[2025-05-31] (Finnhub) Supplier expands production"; len(res.NewsLines) != 1 || res.NewsLines[0] != want {
		t.Errorf("news lines = %v, want [%s]", res.NewsLines, want)
	}
	if res.Analysis == nil || res.Analysis.Trend() != "moderately up" {
		t.Errorf("analysis trend = %+v, want moderately up", res.Analysis)
	}
	if !strings.Contains(res.ImpactTable, "| 2025-05-31 | $150.25 | $2.25 | 1.52% | $147.50 - $151.00 |") {
		t.Errorf("impact table = %q", res.ImpactTable)
	}

	// the prompt fed to the writer carries analysis and news
	if len(f.writer.prompts) != 1 {
		t.Fatalf("writer called %d times, want 1", len(f.writer.prompts))
	}
	prompt := f.writer.prompts[0]
	if !strings.Contains(prompt, "MONTHLY Apple Inc (AAPL) 1mo: moderately up 1.52% high 151 low 147.5 vol 2.33% volume average") {
		t.Errorf("prompt = %q, missing analysis header", prompt)
	}
	if !strings.Contains(prompt, "(Finnhub) Supplier expands production") {
		t.Errorf("prompt = %q, missing news line", prompt)
	}

	if len(f.store.saved) != 1 {
		t.Fatalf("store has %d generations, want 1", len(f.store.saved))
	}
	saved := f.store.saved[0]
	if saved.ID != "gen-123" || saved.Symbol != "AAPL" || saved.Period != "1mo" {
		t.Errorf("saved identity = %s/%s/%s", saved.ID, saved.Symbol, saved.Period)
	}
	if !saved.CreatedAt.Equal(testNow) {
		t.Errorf("saved.CreatedAt = %v, want %v", saved.CreatedAt, testNow)
	}

	var success, errs int
	for _, ev := range res.Logs {
		switch ev.Type {
		case applogger.EventSuccess:
			success++
		case applogger.EventError:
			errs++
		}
	}
	if success < 3 || errs != 0 {
		t.Errorf("run log success=%d errors=%d, want >=3 successes and no errors: %+v", success, errs, res.Logs)
	}
}

func TestGenerateRejectsEmptySymbol(t *testing.T) {
	f := newGeneratorFixture(t, nil)

	_, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "   "})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "symbol" {
		t.Fatalf("err = %v, want symbol validation error", err)
	}
	if f.quotes.calls != 0 {
		t.Error("quote provider called for an empty symbol")
	}
}

func TestGenerateAbortsWhenQuoteFails(t *testing.T) {
	f := newGeneratorFixture(t, nil)
	f.quotes.err = &models.FetchError{Source: models.SourceFinnhub, StatusCode: 429}

	_, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: domrepo.Period1Mo})
	var ferr *models.FetchError
	if !errors.As(err, &ferr) || !ferr.RateLimited() {
		t.Fatalf("err = %v, want rate-limited fetch error", err)
	}
	if !hasString(f.metrics.errs, "quote_fetch") {
		t.Errorf("metrics errors = %v, want quote_fetch", f.metrics.errs)
	}
	if len(f.writer.prompts) != 0 {
		t.Error("writer called after quote failure")
	}
}

func TestGenerateAbortsOnInvalidQuote(t *testing.T) {
	f := newGeneratorFixture(t, nil)
	f.quotes.quote = &models.Quote{Current: 0}

	_, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: domrepo.Period1Mo})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !hasString(f.metrics.errs, "quote_validation") {
		t.Errorf("metrics errors = %v, want quote_validation", f.metrics.errs)
	}
}

func TestGenerateContinuesWithoutNews(t *testing.T) {
	f := newGeneratorFixture(t, nil)

	res, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "TSLA", Period: domrepo.Period3Mo})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.NewsLines) != 1 || res.NewsLines[0] != "No recent news available for TSLA" {
		t.Errorf("news lines = %v, want the no-news notice", res.NewsLines)
	}
	if len(f.writer.prompts) != 1 || !strings.Contains(f.writer.prompts[0], "No recent news available for TSLA") {
		t.Error("prompt does not carry the no-news notice")
	}
	if !strings.HasPrefix(f.writer.prompts[0], "LONGTERM") {
		t.Errorf("prompt = %q, want the long-term template for 3mo", f.writer.prompts[0])
	}
}

func TestGenerateSurvivesPersistFailure(t *testing.T) {
	f := newGeneratorFixture(t, nil)
	f.store.saveErr = errors.New("clickhouse down")

	res, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: domrepo.Period1Mo})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Script == "" {
		t.Error("script missing despite successful generation")
	}

	var found bool
	for _, ev := range res.Logs {
		if ev.Type == applogger.EventError && strings.Contains(ev.Message, "Failed to save to history") {
			found = true
		}
	}
	if !found {
		t.Errorf("run log missing persist failure event: %+v", res.Logs)
	}
	if !hasString(f.metrics.errs, "persist") {
		t.Errorf("metrics errors = %v, want persist", f.metrics.errs)
	}
}

func TestGenerateAbortsWhenWriterFails(t *testing.T) {
	f := newGeneratorFixture(t, nil)
	f.writer.err = errors.New("model unavailable")

	_, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: domrepo.Period1Mo})
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("err = %v, want writer failure", err)
	}
	if !hasString(f.metrics.errs, "writer") {
		t.Errorf("metrics errors = %v, want writer", f.metrics.errs)
	}
	if len(f.store.saved) != 0 {
		t.Error("failed run was persisted")
	}
}

func TestGenerateServesQuoteFromCache(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	cached := &models.Quote{Open: 10, High: 12, Low: 9, Current: 11, PrevClose: 10, Change: 1, ChangePercent: 10}
	if err := c.Set(context.Background(), "quote:AAPL", cached, time.Minute); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	f := newGeneratorFixture(t, nil, WithResultCache(c, time.Minute, time.Minute))
	f.quotes.err = errors.New("provider must not be called")

	res, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: domrepo.Period1Mo})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.quotes.calls != 0 {
		t.Errorf("quote provider called %d times, want 0", f.quotes.calls)
	}
	if res.Analysis.CurrentPrice != 11 {
		t.Errorf("analysis price = %v, want the cached 11", res.Analysis.CurrentPrice)
	}
}

func TestGenerateFallsBackToDefaultPeriod(t *testing.T) {
	f := newGeneratorFixture(t, nil)

	res, err := f.gen.Generate(context.Background(), GenerateParams{Symbol: "AAPL", Period: "2w"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Period != domrepo.Period1Mo {
		t.Errorf("period = %s, want the 1mo default", res.Period)
	}
}

func hasString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
