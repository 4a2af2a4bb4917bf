// Command generate runs one script generation from the terminal and prints
// the result, without starting the HTTP server. Useful for trying prompts
// and writer backends before deploying.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"StockScribe/internal/di"
	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/usecase"
	"StockScribe/pkg/config"
	applogger "StockScribe/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "config file path")
		symbol     = flag.String("symbol", "", "stock ticker symbol (required)")
		period     = flag.String("period", "1mo", "analysis period: 1mo, 3mo, 6mo, 1y")
		save       = flag.Bool("save", false, "persist the generation to the configured backend")
		timeout    = flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	)
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "usage: generate -symbol AAPL [-period 1mo] [-save]")
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Run logs go to stderr so stdout stays clean for the script itself.
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	m := di.ProvideMetrics()
	fetcher := di.ProvideFetcher(cfg, l)
	fh := di.ProvideFinnhubClient(cfg, fetcher, l)
	pipeline := di.ProvideNewsPipeline(cfg, fh, fetcher, m, l)
	loader := di.ProvidePromptLoader(cfg, l)
	writer, err := di.ProvideScriptWriter(cfg, l)
	if err != nil {
		log.Fatalf("writer init failed: %v", err)
	}

	var proc *usecase.GenerationProcessor
	if *save {
		chClient, err := di.ProvideClickHouseClient(cfg)
		if err != nil {
			log.Fatalf("clickhouse init failed: %v", err)
		}
		defer chClient.Close()
		store, err := di.ProvideGenerationStore(chClient, cfg, l)
		if err != nil {
			log.Fatalf("store init failed: %v", err)
		}
		pub, err := di.ProvideGenerationPublisher(cfg)
		if err != nil {
			log.Fatalf("publisher init failed: %v", err)
		}
		proc = di.ProvideGenerationProcessor(pub, store, m, cfg)
		defer proc.Close()
	}

	gen := di.ProvideScriptGenerator(
		di.ProvideQuoteProvider(fh),
		di.ProvideAnalyzer(),
		pipeline, loader, writer, proc, m, cfg, l,
		di.ProvideResultCache(nil),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	col := applogger.NewRunCollector()
	events, unsub := col.Subscribe(64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range events {
			fmt.Fprintf(os.Stderr, "[%s %s] %s\n", ev.Timestamp, ev.Elapsed, ev.Message)
		}
	}()

	res, err := gen.Generate(ctx, usecase.GenerateParams{
		Symbol:    *symbol,
		Period:    domrepo.Period(*period),
		Collector: col,
	})
	col.Close()
	unsub()
	<-printed

	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	printResult(res)
}

func printResult(res *usecase.GenerateResult) {
	rule := strings.Repeat("=", 64)
	fmt.Println(rule)
	fmt.Printf(" %s - %s (%s)\n", res.Symbol, res.CompanyName, res.Period)
	fmt.Println(rule)
	fmt.Println()
	fmt.Println(res.ImpactTable)
	fmt.Println()
	fmt.Println("Recent news:")
	for _, line := range res.NewsLines {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 64))
	fmt.Println(res.Script)
	fmt.Println(strings.Repeat("-", 64))
}
