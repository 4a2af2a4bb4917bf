package usecase

import (
	"context"
	"strings"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
)

// DefaultHistoryLimit caps a history read when the caller does not.
const DefaultHistoryLimit = 10

// History serves past generations for a symbol, newest first.
type History struct {
	store domrepo.GenerationStore
}

func NewHistory(store domrepo.GenerationStore) *History {
	return &History{store: store}
}

func (h *History) List(ctx context.Context, symbol string, limit int) ([]*models.Generation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, &models.ValidationError{Field: "symbol", Reason: "is required"}
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return h.store.History(ctx, symbol, limit)
}
