package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "StockScribe/internal/domain/repository"
	"StockScribe/internal/service/progress"
	applogger "StockScribe/pkg/logger"
	"StockScribe/pkg/queue"
)

// GenerateJobType is the queue message type for async generation requests.
const GenerateJobType = "generate_script"

// generateJobTimeout bounds one queued run; local model inference dominates.
const generateJobTimeout = 5 * time.Minute

// GenerateJobPayload is the queued request. RunID keys the progress stream
// the submitting handler returned to the client.
type GenerateJobPayload struct {
	RunID  string `json:"run_id"`
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

// GenerationJob runs queued generation requests on queue workers.
type GenerationJob struct {
	gen      *ScriptGenerator
	progress *progress.Registry
	log      *applogger.Logger
	timeout  time.Duration
}

func NewGenerationJob(gen *ScriptGenerator, reg *progress.Registry, log *applogger.Logger) *GenerationJob {
	return &GenerationJob{gen: gen, progress: reg, log: log, timeout: generateJobTimeout}
}

func (j *GenerationJob) Name() string { return "script generation" }

func (j *GenerationJob) Type() string { return GenerateJobType }

func (j *GenerationJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[GenerateJobPayload](payload)
	if err != nil {
		return fmt.Errorf("decode generation job: %w", err)
	}

	col := j.progress.Start(req.RunID)
	defer j.progress.Finish(req.RunID)

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	res, err := j.gen.Generate(ctx, GenerateParams{
		Symbol:    req.Symbol,
		Period:    domrepo.NormalizePeriod(req.Period),
		Collector: col,
	})
	if err != nil {
		if j.log != nil {
			j.log.Error("queued generation failed",
				applogger.String("run_id", req.RunID),
				applogger.String("symbol", req.Symbol),
				applogger.Error(err))
		}
		return err
	}

	if j.log != nil {
		j.log.Info("queued generation finished",
			applogger.String("run_id", req.RunID),
			applogger.String("symbol", res.Symbol),
			applogger.Int("script_chars", len(res.Script)))
	}
	return nil
}

var _ queue.Job = (*GenerationJob)(nil)
