package repository

import (
	"context"

	"StockScribe/internal/domain/models"
)

// GenerationStore persists completed generations and serves history reads.
type GenerationStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Save(ctx context.Context, g *models.Generation) error
	History(ctx context.Context, symbol string, limit int) ([]*models.Generation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// GenerationPublisher emits completed generations to a broker so storage can
// run decoupled from the request path.
type GenerationPublisher interface {
	Publish(ctx context.Context, g *models.Generation) error
	Close() error
}

// Metrics records pipeline health counters.
type Metrics interface {
	RecordGenerationStored(backend, symbol string)
	RecordError(kind string)
	RecordSourceItems(source string, count int)
	RecordLatency(op string, seconds float64)
}
