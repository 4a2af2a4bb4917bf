package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"StockScribe/internal/usecase"
	pkgch "StockScribe/pkg/clickhouse"
	"StockScribe/pkg/config"
	xhttp "StockScribe/pkg/http"
	pkgkafka "StockScribe/pkg/kafka"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpHandler xhttp.Handler
	proc        *usecase.GenerationProcessor
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	jobQueue    *queue.RedisQueue
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies. consumer and
// jobQueue may be nil when the config leaves them disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	proc *usecase.GenerationProcessor,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		httpHandler: handler,
		proc:        proc,
		consumer:    consumer,
		kh:          kh,
		chClient:    chClient,
		jobQueue:    jobQueue,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, 10*time.Second),
	)
	a.registerReadiness(a.httpServer.Echo())

	// Start the async job queue
	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			a.log.Error("job queue start error", applogger.Error(err))
			return err
		}
		a.log.Info("job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("writer", a.cfg.Writer.Backend),
		applogger.String("backend", a.cfg.Generations.Backend))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop taking requests first so no run starts mid-shutdown.
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close the processor's publisher and store, then the ClickHouse pool.
	if a.proc != nil {
		a.proc.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}

// registerReadiness adds the probe endpoint. Unlike the API envelope it
// answers with the real HTTP status so orchestrators can act on it.
func (a *App) registerReadiness(e *echo.Echo) {
	e.GET("/readyz", func(c echo.Context) error {
		checkCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if a.chClient != nil {
			if err := a.chClient.Health(checkCtx); err != nil {
				checks["clickhouse"] = err.Error()
				healthy = false
			} else {
				checks["clickhouse"] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, checks)
	})
}
