package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	models "StockScribe/internal/domain/models"
	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/service/metrics"
	"StockScribe/internal/service/progress"
	"StockScribe/internal/service/ratelimit"
	"StockScribe/internal/service/symbols"
	"StockScribe/internal/usecase"
	xhttp "StockScribe/pkg/http"
	xlogger "StockScribe/pkg/logger"
	"StockScribe/pkg/queue"
)

// historyTimestampLayout renders history rows for display.
const historyTimestampLayout = "2006-01-02 03:04 PM"

// Generator runs one script generation.
type Generator interface {
	Generate(ctx context.Context, p usecase.GenerateParams) (*usecase.GenerateResult, error)
}

// HistoryLister serves past generations for a symbol.
type HistoryLister interface {
	List(ctx context.Context, symbol string, limit int) ([]*models.Generation, error)
}

// SymbolSearcher serves typeahead matches.
type SymbolSearcher interface {
	Search(q string, limit int) []symbols.Match
}

// GenerateEchoHandler exposes the generation API over Echo.
type GenerateEchoHandler struct {
	logger   *xlogger.Logger
	gen      Generator
	history  HistoryLister
	symbols  SymbolSearcher
	progress *progress.Registry

	queue    queue.QueueService
	rl       *ratelimit.Limiter
	rlCap    float64
	rlRefill float64

	newRunID func() string
}

type HandlerOption func(*GenerateEchoHandler)

// WithAsyncQueue enables POST /api/generate/async via the given queue.
func WithAsyncQueue(q queue.QueueService) HandlerOption {
	return func(h *GenerateEchoHandler) { h.queue = q }
}

// WithRateLimit guards the generate endpoints per remote IP.
func WithRateLimit(capacity, refillPerSec float64) HandlerOption {
	return func(h *GenerateEchoHandler) {
		h.rl = ratelimit.New()
		h.rlCap = capacity
		h.rlRefill = refillPerSec
	}
}

func NewGenerateEchoHandler(logger *xlogger.Logger, gen Generator, history HistoryLister, searcher SymbolSearcher, reg *progress.Registry, opts ...HandlerOption) *GenerateEchoHandler {
	metrics.Register()
	h := &GenerateEchoHandler{
		logger:   logger,
		gen:      gen,
		history:  history,
		symbols:  searcher,
		progress: reg,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *GenerateEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/generate", h.Generate)
	g.POST("/generate/async", h.GenerateAsync)
	g.GET("/history/:symbol", h.History)
	g.GET("/symbols/search", h.Search)
	e.GET("/ws/progress", h.Progress)
	e.GET("/health", h.Health)
}

// GenerateResponse is the payload for a finished generation.
type GenerateResponse struct {
	Success     bool              `json:"success"`
	Symbol      string            `json:"symbol"`
	Period      string            `json:"period"`
	CompanyName string            `json:"company_name"`
	Script      string            `json:"script"`
	Prompt      string            `json:"prompt"`
	ImpactTable string            `json:"impact_table"`
	News        []string          `json:"news"`
	Logs        []xlogger.RunEvent `json:"logs"`
}

func (h *GenerateEchoHandler) Generate(c echo.Context) error {
	start := time.Now()
	endpoint := "generate"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.GenerateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()+":generate", h.rlCap, h.rlRefill) {
		h.logger.Warn("generate rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, tooManyRequestsError())
	}

	runID := c.QueryParam("run_id")
	var col *xlogger.RunCollector
	if runID != "" {
		col = h.progress.Start(runID)
		defer h.progress.Finish(runID)
	}

	res, err := h.gen.Generate(c.Request().Context(), usecase.GenerateParams{
		Symbol:    req.Symbol,
		Period:    domrepo.Period(req.Period),
		Collector: col,
	})
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("generate usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, friendlyGenerationError(err))
	}

	return xhttp.SuccessResponse(c, &GenerateResponse{
		Success:     true,
		Symbol:      res.Symbol,
		Period:      string(res.Period),
		CompanyName: res.CompanyName,
		Script:      res.Script,
		Prompt:      res.Prompt,
		ImpactTable: res.ImpactTable,
		News:        res.NewsLines,
		Logs:        res.Logs,
	})
}

// AsyncAccepted is the payload for an enqueued generation.
type AsyncAccepted struct {
	RunID       string `json:"run_id"`
	Symbol      string `json:"symbol"`
	Period      string `json:"period"`
	ProgressURL string `json:"progress_url"`
}

func (h *GenerateEchoHandler) GenerateAsync(c echo.Context) error {
	endpoint := "generate_async"

	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_ASYNC_DISABLED", "", "Async generation is not enabled.", http.StatusServiceUnavailable))
	}

	req := &models.GenerateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()+":generate", h.rlCap, h.rlRefill) {
		h.logger.Warn("generate_async rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, tooManyRequestsError())
	}

	runID := h.newRunID()
	h.progress.Start(runID)

	err := h.queue.PublishMessage(c.Request().Context(), usecase.GenerateJobType, usecase.GenerateJobPayload{
		RunID:  runID,
		Symbol: req.Symbol,
		Period: req.Period,
	})
	if err != nil {
		h.progress.Finish(runID)
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("generate enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Could not queue the generation job. Please try again."))
	}

	return xhttp.DataResponse(c, http.StatusAccepted, &AsyncAccepted{
		RunID:       runID,
		Symbol:      req.Symbol,
		Period:      req.Period,
		ProgressURL: "/ws/progress?run_id=" + runID,
	})
}

// HistoryItem is one generation row formatted for display.
type HistoryItem struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Period      string `json:"period"`
	CompanyName string `json:"company_name"`
	Prompt      string `json:"prompt"`
	Script      string `json:"script"`
	ImpactTable string `json:"impact_table"`
	Timestamp   string `json:"timestamp"`
}

func (h *GenerateEchoHandler) History(c echo.Context) error {
	start := time.Now()
	endpoint := "history"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.history.List(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("history usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, g := range rows {
		items = append(items, HistoryItem{
			ID:          g.ID,
			Symbol:      g.Symbol,
			Period:      g.Period,
			CompanyName: g.CompanyName,
			Prompt:      g.Prompt,
			Script:      g.Script,
			ImpactTable: g.ImpactTable,
			Timestamp:   g.CreatedAt.Format(historyTimestampLayout),
		})
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *GenerateEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.symbols.Search(req.Query, req.Limit))
}

func (h *GenerateEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func tooManyRequestsError() *xhttp.AppError {
	return xhttp.NewAppError("ERR_RATE_LIMITED", "",
		"Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
}

// friendlyGenerationError maps pipeline failures to the messages shown to
// users, keeping the raw cause for the log only.
func friendlyGenerationError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.NewAppError("ERR_INVALID_STOCK_DATA", verr.Field,
			"Invalid stock price data. Please verify the symbol and try again.",
			http.StatusUnprocessableEntity).WithError(err)
	}

	var ferr *models.FetchError
	if errors.As(err, &ferr) {
		if ferr.RateLimited() {
			return xhttp.NewAppError("ERR_RATE_LIMITED", "",
				"API rate limit exceeded. Please wait a moment and try again.",
				http.StatusTooManyRequests).WithError(err)
		}
		return xhttp.NewAppError("ERR_UPSTREAM", "",
			"Unable to fetch stock data. Please try again.",
			http.StatusBadGateway).WithError(err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return xhttp.NewAppError("ERR_TIMEOUT", "",
			"Request timed out. Please try again.",
			http.StatusGatewayTimeout).WithError(err)
	}

	return xhttp.InternalError("An unexpected error occurred. Please try again.").WithError(err)
}
