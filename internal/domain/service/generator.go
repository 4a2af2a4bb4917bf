package service

import (
	"context"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
)

// NewsSource adapts one external provider into normalized news items.
// Implementations never abort the pipeline: an error return means "this
// source produced nothing this round".
type NewsSource interface {
	Name() models.Source
	Fetch(ctx context.Context, symbol string, period domrepo.Period) ([]models.NewsItem, error)
}

// QuoteProvider returns the current snapshot for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	CompanyName(ctx context.Context, symbol string) string
}

// ScriptWriter turns a finished prompt into narration text.
type ScriptWriter interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
