package usecase

import (
	"context"
	"errors"
	"testing"

	"StockScribe/internal/domain/models"
)

func TestHistoryNormalizesSymbolAndLimit(t *testing.T) {
	store := &fakeStore{saved: []*models.Generation{sampleGeneration()}}
	h := NewHistory(store)

	got, err := h.List(context.Background(), "  aapl ", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d generations, want 1", len(got))
	}
	if store.lastSymbol != "AAPL" {
		t.Errorf("store queried with %q, want AAPL", store.lastSymbol)
	}
	if store.lastLimit != DefaultHistoryLimit {
		t.Errorf("store queried with limit %d, want %d", store.lastLimit, DefaultHistoryLimit)
	}
}

func TestHistoryPassesExplicitLimit(t *testing.T) {
	store := &fakeStore{}
	h := NewHistory(store)

	if _, err := h.List(context.Background(), "TSLA", 25); err != nil {
		t.Fatalf("List: %v", err)
	}
	if store.lastLimit != 25 {
		t.Errorf("store queried with limit %d, want 25", store.lastLimit)
	}
}

func TestHistoryRejectsEmptySymbol(t *testing.T) {
	h := NewHistory(&fakeStore{})

	_, err := h.List(context.Background(), "   ", 10)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "symbol" {
		t.Fatalf("err = %v, want symbol validation error", err)
	}
}
