package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	pkgch "StockScribe/pkg/clickhouse"
	pkgkafka "StockScribe/pkg/kafka"
	applogger "StockScribe/pkg/logger"
)

// DefaultGenerationsTable is the fully qualified generations table.
const DefaultGenerationsTable = "stockscribe.script_generations"

// CHGenerationStore implements GenerationStore backed by ClickHouse.
type CHGenerationStore struct {
	ch    *pkgch.Client
	table string
	l     *applogger.Logger
}

// NewCHGenerationStore creates ClickHouse-backed generation storage.
func NewCHGenerationStore(ch *pkgch.Client, table string) *CHGenerationStore {
	if table == "" {
		table = DefaultGenerationsTable
	}
	return &CHGenerationStore{ch: ch, table: table}
}

// SetLogger injects a structured logger.
func (s *CHGenerationStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the database and table exist. Idempotent.
func (s *CHGenerationStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStatements(s.table))
}

// schemaStatements builds the idempotent DDL for table. A database-qualified
// name also yields the CREATE DATABASE statement.
func schemaStatements(table string) []string {
	var stmts []string
	if db, _, ok := strings.Cut(table, "."); ok {
		stmts = append(stmts, "CREATE DATABASE IF NOT EXISTS "+db)
	}
	stmts = append(stmts, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id UUID,
            symbol LowCardinality(String),
            period LowCardinality(String),
            company_name String,
            prompt String,
            script String,
            impact_table String,
            created_at DateTime
        ) ENGINE = MergeTree
        ORDER BY (symbol, created_at)
    `, table))
	return stmts
}

func (s *CHGenerationStore) Save(ctx context.Context, g *models.Generation) error {
	start := time.Now()
	q := fmt.Sprintf("INSERT INTO %s (id, symbol, period, company_name, prompt, script, impact_table, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.ch.DB().ExecContext(ctx, q,
		g.ID,
		g.Symbol,
		g.Period,
		g.CompanyName,
		g.Prompt,
		g.Script,
		g.ImpactTable,
		g.CreatedAt,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse insert generation error",
				applogger.String("table", s.table),
				applogger.String("symbol", g.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert generation: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse insert generation ok",
			applogger.String("symbol", g.Symbol),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHGenerationStore) History(ctx context.Context, symbol string, limit int) ([]*models.Generation, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT id, symbol, period, company_name, prompt, script, impact_table, created_at
        FROM %s
        WHERE symbol = ?
        ORDER BY created_at DESC
        LIMIT ?
    `, s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q, symbol, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Generation, 0, limit)
	for rows.Next() {
		var g models.Generation
		if err := rows.Scan(&g.ID, &g.Symbol, &g.Period, &g.CompanyName, &g.Prompt, &g.Script, &g.ImpactTable, &g.CreatedAt); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse history scan error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse history ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHGenerationStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHGenerationStore) Close() error {
	return nil // Managed by pkg
}

// KafkaGenerationPublisher implements GenerationPublisher for Kafka.
type KafkaGenerationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaGenerationPublisher creates a Kafka publisher. Messages are keyed
// by symbol so one symbol's history stays ordered per partition.
func NewKafkaGenerationPublisher(producer *pkgkafka.Producer, topic string) domrepo.GenerationPublisher {
	return &KafkaGenerationPublisher{producer: producer, topic: topic}
}

func (p *KafkaGenerationPublisher) Publish(ctx context.Context, g *models.Generation) error {
	return p.producer.Publish(ctx, p.topic, []byte(g.Symbol), g)
}

func (p *KafkaGenerationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.GenerationStore = (*CHGenerationStore)(nil)
