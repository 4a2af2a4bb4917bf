package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "StockScribe/internal/domain/repository"
	domsvc "StockScribe/internal/domain/service"
	"StockScribe/internal/handler/api"
	mid "StockScribe/internal/middleware"
	internalrepo "StockScribe/internal/repository"
	"StockScribe/internal/service/finnhub"
	"StockScribe/internal/service/progress"
	"StockScribe/internal/service/prompts"
	"StockScribe/internal/service/symbols"
	"StockScribe/internal/services/analysis"
	"StockScribe/internal/services/scriptwriter"
	"StockScribe/internal/services/sources"
	"StockScribe/internal/usecase"
	pkgcache "StockScribe/pkg/cache"
	pkgch "StockScribe/pkg/clickhouse"
	"StockScribe/pkg/config"
	xhttp "StockScribe/pkg/http"
	pkgkafka "StockScribe/pkg/kafka"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/metrics"
	"StockScribe/pkg/queue"
	"StockScribe/pkg/retry"
	"StockScribe/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideFetcher creates the retry fetcher shared by every provider client.
func ProvideFetcher(cfg *config.Config, l *applogger.Logger) *retry.Fetcher {
	return retry.New(
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithInitialBackoff(cfg.Retry.InitialBackoff),
		retry.WithLogger(l),
	)
}

// ProvideFinnhubClient creates the Finnhub REST client.
func ProvideFinnhubClient(cfg *config.Config, fetcher *retry.Fetcher, l *applogger.Logger) *finnhub.Client {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Finnhub.Timeout))
	return finnhub.New(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, httpClient, fetcher, l)
}

// ProvideQuoteProvider binds the Finnhub client as the quote source.
func ProvideQuoteProvider(fh *finnhub.Client) domsvc.QuoteProvider {
	return fh
}

// ProvideNewsPipeline assembles the two provider tiers and the aggregation
// middleware. Alpha Vantage joins tier one only when a key is configured.
func ProvideNewsPipeline(
	cfg *config.Config,
	fh *finnhub.Client,
	fetcher *retry.Fetcher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *mid.FetchPipeline {
	tier1 := []domsvc.NewsSource{sources.NewFinnhubNews(fh)}
	if cfg.AlphaVantage.APIKey != "" {
		tier1 = append(tier1, sources.NewAlphaVantage(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, nil, fetcher, l))
	}
	tier1 = append(tier1, sources.NewYahoo(cfg.Yahoo.BaseURL, nil, fetcher, l))

	mw := sources.NewMarketWatch(cfg.Scrape.MarketWatchBaseURL, nil, fetcher, l)
	mw.SetUserAgent(cfg.Scrape.UserAgent)
	rt := sources.NewReuters(cfg.Scrape.ReutersBaseURL, nil, fetcher, l)
	rt.SetUserAgent(cfg.Scrape.UserAgent)
	tier2 := []domsvc.NewsSource{mw, rt}

	return mid.NewFetchPipeline(tier1, tier2, m,
		mid.WithTopK(cfg.News.TopK),
		mid.WithSimilarityThreshold(cfg.News.DedupeThreshold),
		mid.WithPipelineLogger(l),
	)
}

// ProvideAnalyzer creates the price movement analyzer.
func ProvideAnalyzer() *analysis.Analyzer {
	return analysis.NewAnalyzer()
}

// ProvidePromptLoader creates the prompt template loader.
func ProvidePromptLoader(cfg *config.Config, l *applogger.Logger) *prompts.Loader {
	return prompts.NewLoader(cfg.Prompts.Dir, cfg.Prompts.TTL, l)
}

// ProvideScriptWriter selects the LLM backend configured under writer.
func ProvideScriptWriter(cfg *config.Config, l *applogger.Logger) (domsvc.ScriptWriter, error) {
	switch cfg.Writer.Backend {
	case "anthropic":
		return scriptwriter.NewAnthropic(cfg.Writer.Anthropic.APIKey, cfg.Writer.Anthropic.Model, l), nil
	case "ollama":
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Writer.Ollama.Timeout))
		return scriptwriter.NewOllama(cfg.Writer.Ollama.BaseURL, cfg.Writer.Ollama.Model, client, l), nil
	default:
		return nil, fmt.Errorf("unknown writer backend: %s", cfg.Writer.Backend)
	}
}

// ProvideSymbolDirectory loads the typeahead directory.
func ProvideSymbolDirectory(cfg *config.Config, l *applogger.Logger) (*symbols.Directory, error) {
	return symbols.Load(cfg.Symbols.Path, l)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideGenerationStore creates the ClickHouse history store and ensures
// its schema. The store backs history reads in both backends; with the
// kafka backend the consumer owns the writes.
func ProvideGenerationStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) (domrepo.GenerationStore, error) {
	store := internalrepo.NewCHGenerationStore(chClient, cfg.ClickHouse.Database+".script_generations")
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("generation schema: %w", err)
	}
	return store, nil
}

// ProvideGenerationPublisher creates the Kafka publisher, or nil when the
// backend writes ClickHouse directly.
func ProvideGenerationPublisher(cfg *config.Config) (domrepo.GenerationPublisher, error) {
	if cfg.Generations.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaGenerationPublisher(producer, cfg.Generations.Topic), nil
}

// ProvideGenerationProcessor creates the backend router for finished runs.
func ProvideGenerationProcessor(
	pub domrepo.GenerationPublisher,
	store domrepo.GenerationStore,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.GenerationProcessor {
	return usecase.NewGenerationProcessor(pub, store, m, cfg.Generations.Backend)
}

// ProvideKafkaConsumer creates the generations consumer, or nil outside the
// kafka backend.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Generations.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaGenerationsHandler registers the handler for the generations
// topic.
func ProvideKafkaGenerationsHandler(store domrepo.GenerationStore, m domrepo.Metrics, cfg *config.Config) *usecase.KafkaGenerationsHandler {
	return usecase.NewKafkaGenerationsHandler(cfg.Generations.Topic, store, m)
}

// ProvideRedisClient creates the shared Redis connection, or nil when Redis
// is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideResultCache picks the quote/news cache: layered memory+Redis when
// Redis is enabled, plain memory otherwise.
func ProvideResultCache(cli *redis.Client) pkgcache.Service {
	if cli == nil {
		return pkgcache.NewMemoryCache()
	}
	return pkgcache.NewLayeredCache(pkgcache.NewRedisCache(cli))
}

// ProvideScriptGenerator wires the generation orchestrator.
func ProvideScriptGenerator(
	quotes domsvc.QuoteProvider,
	analyzer *analysis.Analyzer,
	pipeline *mid.FetchPipeline,
	loader *prompts.Loader,
	writer domsvc.ScriptWriter,
	proc *usecase.GenerationProcessor,
	m domrepo.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
	rc pkgcache.Service,
) *usecase.ScriptGenerator {
	return usecase.NewScriptGenerator(quotes, analyzer, pipeline, loader, writer, proc, m,
		usecase.WithResultCache(rc, cfg.Cache.QuoteTTL, cfg.Cache.NewsTTL),
		usecase.WithGeneratorLogger(l),
	)
}

// ProvideHistory creates the history read use case.
func ProvideHistory(store domrepo.GenerationStore) *usecase.History {
	return usecase.NewHistory(store)
}

// ProvideProgressRegistry creates the live run registry.
func ProvideProgressRegistry() *progress.Registry {
	return progress.NewRegistry()
}

// ProvideGenerationJob creates the async generation job.
func ProvideGenerationJob(gen *usecase.ScriptGenerator, reg *progress.Registry, l *applogger.Logger) *usecase.GenerationJob {
	return usecase.NewGenerationJob(gen, reg, l)
}

// ProvideJobQueue creates the Redis-backed job queue with the generation job
// registered, or nil when the queue is disabled.
func ProvideJobQueue(cfg *config.Config, l *applogger.Logger, cli *redis.Client, job *usecase.GenerationJob) *queue.RedisQueue {
	if !cfg.Queue.Enabled || cli == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, cli, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideAPIHandler creates the Echo handler with the optional features the
// config enables.
func ProvideAPIHandler(
	cfg *config.Config,
	l *applogger.Logger,
	gen *usecase.ScriptGenerator,
	hist *usecase.History,
	dir *symbols.Directory,
	reg *progress.Registry,
	q *queue.RedisQueue,
) xhttp.Handler {
	var opts []api.HandlerOption
	if cfg.RateLimit.Enabled {
		opts = append(opts, api.WithRateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	if q != nil {
		opts = append(opts, api.WithAsyncQueue(q))
	}
	return api.NewGenerateEchoHandler(l, gen, hist, dir, reg, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	m domrepo.Metrics,
	handler xhttp.Handler,
	proc *usecase.GenerationProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaGenerationsHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(usecase.NewConsumerHooks(l, m))
	}
	return server.New(cfg, l, handler, proc, consumer, kh, chClient, jobQueue)
}
