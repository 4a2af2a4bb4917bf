package main

import (
	"flag"
	"log"
	"os"

	"StockScribe/internal/di"
	"StockScribe/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s writer=%s backend=%s", cfg.Environment, cfg.Writer.Backend, cfg.Generations.Backend)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	if cfg.Generations.Backend == "kafka" {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Generations.Topic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
