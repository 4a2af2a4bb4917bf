//go:build wireinject
// +build wireinject

package di

import (
	"StockScribe/pkg/config"
	"StockScribe/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Shared retry budget
		ProvideFetcher,

		// Market data providers
		ProvideFinnhubClient,
		ProvideQuoteProvider,
		ProvideNewsPipeline,

		// Generation pipeline pieces
		ProvideAnalyzer,
		ProvidePromptLoader,
		ProvideScriptWriter,
		ProvideSymbolDirectory,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideGenerationStore,
		ProvideGenerationPublisher,
		ProvideKafkaConsumer,
		ProvideKafkaGenerationsHandler,
		ProvideRedisClient,
		ProvideResultCache,

		// Use cases
		ProvideGenerationProcessor,
		ProvideScriptGenerator,
		ProvideHistory,
		ProvideProgressRegistry,
		ProvideGenerationJob,
		ProvideJobQueue,

		// HTTP handler
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
