package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	domsvc "StockScribe/internal/domain/service"
	mid "StockScribe/internal/middleware"
	"StockScribe/internal/service/prompts"
	"StockScribe/internal/services/analysis"
	"StockScribe/pkg/cache"
	applogger "StockScribe/pkg/logger"
)

// GenerateParams is one generation request. Collector is optional; when set,
// step events stream to it live, otherwise a private one records the run.
type GenerateParams struct {
	Symbol    string
	Period    domrepo.Period
	Collector *applogger.RunCollector
}

// GenerateResult is everything a finished run produced.
type GenerateResult struct {
	ID          string
	Symbol      string
	Period      domrepo.Period
	CompanyName string
	Script      string
	Prompt      string
	ImpactTable string
	NewsLines   []string
	Analysis    *models.PriceAnalysis
	Logs        []applogger.RunEvent
}

// ScriptGenerator orchestrates one generation run: quote, analysis, news,
// prompt, script, persistence. Quote and validation failures abort the run;
// news and persistence failures degrade and are reported in the run log.
type ScriptGenerator struct {
	quotes   domsvc.QuoteProvider
	analyzer *analysis.Analyzer
	news     *mid.FetchPipeline
	prompts  *prompts.Loader
	writer   domsvc.ScriptWriter
	proc     *GenerationProcessor
	metrics  domrepo.Metrics
	log      *applogger.Logger

	cache    cache.Service
	quoteTTL time.Duration
	newsTTL  time.Duration

	now   func() time.Time
	newID func() string
}

type GeneratorOption func(*ScriptGenerator)

// WithResultCache caches quotes and aggregated news between runs.
func WithResultCache(c cache.Service, quoteTTL, newsTTL time.Duration) GeneratorOption {
	return func(g *ScriptGenerator) {
		g.cache = c
		g.quoteTTL = quoteTTL
		g.newsTTL = newsTTL
	}
}

// WithGeneratorLogger attaches a structured logger.
func WithGeneratorLogger(l *applogger.Logger) GeneratorOption {
	return func(g *ScriptGenerator) { g.log = l }
}

// WithGeneratorClock overrides the clock.
func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *ScriptGenerator) { g.now = now }
}

// WithIDFunc overrides generation id minting.
func WithIDFunc(f func() string) GeneratorOption {
	return func(g *ScriptGenerator) { g.newID = f }
}

// NewScriptGenerator wires the orchestrator. proc may be nil for one-shot
// runs that do not persist.
func NewScriptGenerator(
	quotes domsvc.QuoteProvider,
	analyzer *analysis.Analyzer,
	news *mid.FetchPipeline,
	promptLoader *prompts.Loader,
	writer domsvc.ScriptWriter,
	proc *GenerationProcessor,
	metrics domrepo.Metrics,
	opts ...GeneratorOption,
) *ScriptGenerator {
	g := &ScriptGenerator{
		quotes:   quotes,
		analyzer: analyzer,
		news:     news,
		prompts:  promptLoader,
		writer:   writer,
		proc:     proc,
		metrics:  metrics,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the full pipeline for one symbol and period.
func (g *ScriptGenerator) Generate(ctx context.Context, p GenerateParams) (*GenerateResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if symbol == "" {
		return nil, &models.ValidationError{Field: "symbol", Reason: "is required"}
	}
	period := p.Period
	if !domrepo.IsValidPeriod(period) {
		period = domrepo.DefaultPeriod()
	}
	col := p.Collector
	if col == nil {
		col = applogger.NewRunCollector()
	}
	start := g.now()

	col.Info("Fetching stock data for %s...", symbol)
	quote, err := g.fetchQuote(ctx, symbol)
	if err != nil {
		col.Error("Failed to fetch stock data: %v", err)
		g.metrics.RecordError("quote_fetch")
		return nil, err
	}

	priceAnalysis, err := g.analyzer.Analyze(quote)
	if err != nil {
		col.Error("Invalid stock data for %s: %v", symbol, err)
		g.metrics.RecordError("quote_validation")
		return nil, err
	}
	col.Success("Stock data retrieved: $%.2f (%+.2f%%)",
		priceAnalysis.CurrentPrice, priceAnalysis.PercentChange)

	impactTable := analysis.FormatImpactTable(priceAnalysis)

	col.Info("Fetching recent news...")
	newsRes := g.fetchNews(ctx, symbol, period)
	if len(newsRes.Items) > 0 {
		col.Success("Found %d relevant news items", len(newsRes.Items))
	} else {
		col.Info("No recent news found")
	}

	companyName := g.quotes.CompanyName(ctx, symbol)

	params := prompts.FromAnalysis(companyName, symbol, period, priceAnalysis,
		impactTable, strings.Join(newsRes.Lines, "\n"))
	prompt, err := g.prompts.Build(period, params)
	if err != nil {
		col.Error("Failed to build prompt: %v", err)
		g.metrics.RecordError("prompt_build")
		return nil, err
	}

	col.Info("Generating script with %s...", g.writer.Name())
	script, err := g.writer.Generate(ctx, prompt)
	if err != nil {
		col.Error("Script generation failed: %v", err)
		g.metrics.RecordError("writer")
		return nil, err
	}
	col.Success("Script generated (%d characters)", len(script))

	gen := &models.Generation{
		ID:          g.newID(),
		Symbol:      symbol,
		Period:      string(period),
		CompanyName: companyName,
		Prompt:      prompt,
		Script:      script,
		ImpactTable: impactTable,
		NewsLines:   newsRes.Lines,
		CreatedAt:   g.now().UTC(),
	}
	if g.proc != nil {
		// History is an auxiliary record; a failed write is reported in the
		// run log without sinking the finished script.
		if err := g.proc.Process(ctx, gen); err != nil {
			col.Error("Failed to save to history: %v", err)
			g.metrics.RecordError("persist")
			if g.log != nil {
				g.log.Error("generation persist failed",
					applogger.String("symbol", symbol),
					applogger.Error(err))
			}
		} else {
			col.Success("Saved to history")
		}
	}

	g.metrics.RecordLatency("generate", g.now().Sub(start).Seconds())

	return &GenerateResult{
		ID:          gen.ID,
		Symbol:      symbol,
		Period:      period,
		CompanyName: companyName,
		Script:      script,
		Prompt:      prompt,
		ImpactTable: impactTable,
		NewsLines:   newsRes.Lines,
		Analysis:    priceAnalysis,
		Logs:        col.Events(),
	}, nil
}

func (g *ScriptGenerator) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := cache.GenerateKey("quote", symbol)
	if g.cache != nil {
		var q models.Quote
		if err := g.cache.Get(ctx, key, &q); err == nil {
			return &q, nil
		}
	}

	q, err := g.quotes.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		_ = g.cache.Set(ctx, key, q, g.quoteTTL)
	}
	return q, nil
}

func (g *ScriptGenerator) fetchNews(ctx context.Context, symbol string, period domrepo.Period) *mid.FetchResult {
	key := cache.GenerateKeyWithParams("news", symbol, period)
	if g.cache != nil {
		var res mid.FetchResult
		if err := g.cache.Get(ctx, key, &res); err == nil && len(res.Lines) > 0 {
			return &res
		}
	}

	res := g.news.Fetch(ctx, symbol, period)

	if g.cache != nil {
		_ = g.cache.Set(ctx, key, res, g.newsTTL)
	}
	return res
}
