package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	pkgkafka "StockScribe/pkg/kafka"
)

// KafkaGenerationsHandler consumes published generations and writes them to
// storage. This is the consumer half of the kafka backend.
type KafkaGenerationsHandler struct {
	topic   string
	store   domrepo.GenerationStore
	metrics domrepo.Metrics
}

func NewKafkaGenerationsHandler(topic string, store domrepo.GenerationStore, metrics domrepo.Metrics) *KafkaGenerationsHandler {
	return &KafkaGenerationsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaGenerationsHandler) Topic() string { return h.topic }

// Handle decodes one generation message and stores it. Unmarshal failures are
// terminal for the message; store failures bubble up for the consumer's retry
// and DLQ handling.
func (h *KafkaGenerationsHandler) Handle(ctx context.Context, b []byte) error {
	var g models.Generation
	if err := json.Unmarshal(b, &g); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !g.CreatedAt.IsZero() {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(g.CreatedAt).Seconds())
	}

	start := time.Now()
	err := h.store.Save(ctx, &g)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordGenerationStored("clickhouse", g.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaGenerationsHandler)(nil)
