package middleware

import (
	"context"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/domain/service"
	"StockScribe/internal/services/news"
	applogger "StockScribe/pkg/logger"
)

// FetchPipeline is the middleware between the news providers and script
// generation. It queries tier-one API sources in order, falls back to the
// tier-two scrapers only when the APIs return nothing, and contains each
// provider's failures so one bad source never sinks a run.
type FetchPipeline struct {
	tier1   []service.NewsSource
	tier2   []service.NewsSource
	deduper *news.Deduper
	metrics domrepo.Metrics
	log     *applogger.Logger
	topK    int
}

type PipelineOption func(*FetchPipeline)

// WithTopK sets how many ranked items survive aggregation.
func WithTopK(n int) PipelineOption {
	return func(p *FetchPipeline) {
		if n > 0 {
			p.topK = n
		}
	}
}

// WithSimilarityThreshold overrides the near-duplicate title threshold.
func WithSimilarityThreshold(v float64) PipelineOption {
	return func(p *FetchPipeline) { p.deduper = news.NewDeduper(v) }
}

// WithPipelineLogger attaches a structured logger for degradation warnings.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *FetchPipeline) { p.log = l }
}

// NewFetchPipeline creates a pipeline over the given provider tiers.
func NewFetchPipeline(tier1, tier2 []service.NewsSource, metrics domrepo.Metrics, opts ...PipelineOption) *FetchPipeline {
	p := &FetchPipeline{
		tier1:   tier1,
		tier2:   tier2,
		deduper: news.NewDeduper(0),
		metrics: metrics,
		topK:    news.TopK,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SourceCount records how many capped items one provider contributed, in
// invocation order.
type SourceCount struct {
	Source models.Source
	Items  int
}

// FetchResult is the aggregation output. Lines always has at least one
// entry; when nothing survived it holds the no-news notice and Items is nil.
type FetchResult struct {
	Lines  []string
	Items  []models.NewsItem
	Counts []SourceCount
}

// Fetch aggregates news for symbol across both tiers, then deduplicates,
// ranks, and formats the survivors. It never fails: provider errors and
// panics degrade to empty contributions.
func (p *FetchPipeline) Fetch(ctx context.Context, symbol string, period domrepo.Period) *FetchResult {
	res := &FetchResult{}

	all := p.fetchTier(ctx, p.tier1, symbol, period, res)
	if len(all) == 0 && len(p.tier2) > 0 {
		if p.log != nil {
			p.log.Info("no API news, trying scraping fallback",
				applogger.String("symbol", symbol))
		}
		all = p.fetchTier(ctx, p.tier2, symbol, period, res)
	}

	if len(all) == 0 {
		res.Lines = news.FormatLines(symbol, nil)
		return res
	}

	unique := p.deduper.Dedupe(all)
	top := news.Rank(unique, p.topK)

	res.Items = top
	res.Lines = news.FormatLines(symbol, top)
	return res
}

func (p *FetchPipeline) fetchTier(ctx context.Context, srcs []service.NewsSource, symbol string, period domrepo.Period, res *FetchResult) []models.NewsItem {
	var all []models.NewsItem
	for _, src := range srcs {
		items := p.fetchOne(ctx, src, symbol, period)
		res.Counts = append(res.Counts, SourceCount{Source: src.Name(), Items: len(items)})
		p.metrics.RecordSourceItems(string(src.Name()), len(items))
		all = append(all, items...)
	}
	return all
}

// fetchOne runs a single provider with failure containment: an error or a
// panic yields an empty contribution and a warning, nothing more.
func (p *FetchPipeline) fetchOne(ctx context.Context, src service.NewsSource, symbol string, period domrepo.Period) (items []models.NewsItem) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			p.metrics.RecordError("source_panic")
			if p.log != nil {
				p.log.Error("news source panicked",
					applogger.String("source", string(src.Name())),
					applogger.Any("panic", r))
			}
		}
	}()

	start := time.Now()
	fetched, err := src.Fetch(ctx, symbol, period)
	if err != nil {
		p.metrics.RecordError("source_fetch")
		if p.log != nil {
			p.log.Warn("news source failed, continuing without it",
				applogger.String("source", string(src.Name())),
				applogger.Error(err))
		}
		return nil
	}
	p.metrics.RecordLatency("source_fetch_"+string(src.Name()), time.Since(start).Seconds())
	return fetched
}
