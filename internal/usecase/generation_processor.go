package usecase

import (
	"context"
	"fmt"
	"time"

	"StockScribe/internal/domain/models"
	drepo "StockScribe/internal/domain/repository"
)

// GenerationProcessor routes finished generations to the configured backend:
// a direct ClickHouse write, or a Kafka publish for the decoupled deployment
// where the consumer owns the table.
type GenerationProcessor struct {
	pub     drepo.GenerationPublisher
	store   drepo.GenerationStore
	metrics drepo.Metrics
	backend string
}

// NewGenerationProcessor creates a new GenerationProcessor instance.
func NewGenerationProcessor(
	pub drepo.GenerationPublisher,
	store drepo.GenerationStore,
	metrics drepo.Metrics,
	backend string,
) *GenerationProcessor {
	return &GenerationProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process persists a single generation via the configured backend.
func (p *GenerationProcessor) Process(ctx context.Context, g *models.Generation) error {
	if g == nil {
		return fmt.Errorf("generation is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, g)
	case "clickhouse":
		err = p.store.Save(ctx, g)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process generation: %w", err)
	}

	p.metrics.RecordGenerationStored(p.backend, g.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *GenerationProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
