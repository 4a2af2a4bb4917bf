package usecase

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	domrepo "StockScribe/internal/domain/repository"
	pkgkafka "StockScribe/pkg/kafka"
	applogger "StockScribe/pkg/logger"
)

// NewConsumerHooks builds the hook chain installed on the Kafka consumer:
// per-message latency and error metrics, plus structured logging carrying
// the trace id from message headers.
func NewConsumerHooks(l *applogger.Logger, m domrepo.Metrics) pkgkafka.ConsumerHook {
	metricsHook := pkgkafka.HookFuncs{
		Before: func(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
		After: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
			if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
				m.RecordLatency("consume", time.Since(start).Seconds())
			}
			if err != nil {
				m.RecordError("consume")
			}
		},
	}

	logHook := pkgkafka.HookFuncs{
		After: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
			fields := []applogger.Field{
				applogger.String("topic", topic),
				applogger.Int("partition", km.Partition),
				applogger.Int64("offset", km.Offset),
			}
			if trace, ok := ctx.Value(pkgkafka.CtxTraceID).(string); ok && trace != "" {
				fields = append(fields, applogger.String("trace_id", trace))
			}
			if err != nil {
				l.Warn("message handling failed", append(fields, applogger.Error(err))...)
				return
			}
			l.Debug("message handled", fields...)
		},
	}

	return pkgkafka.NewHookChain(metricsHook, logHook)
}
