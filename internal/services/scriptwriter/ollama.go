package scriptwriter

import (
	"context"
	"fmt"
	"strings"
	"time"

	xhttp "StockScribe/pkg/http"
	applogger "StockScribe/pkg/logger"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "mistral"

	// ollamaTemperature keeps some variety between runs without letting the
	// narration drift off the numbers.
	ollamaTemperature = 0.7
)

// Ollama writes scripts through a local Ollama server, one non-streaming
// completion per script.
type Ollama struct {
	baseURL string
	model   string
	http    *xhttp.Client
	log     *applogger.Logger
}

func NewOllama(baseURL, model string, client *xhttp.Client, log *applogger.Logger) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if client == nil {
		// Local generation takes a while on modest hardware.
		client = xhttp.NewClient(xhttp.WithTimeout(2 * time.Minute))
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    client,
		log:     log,
	}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var resp ollamaResponse
	err := o.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    o.baseURL + "/api/generate",
		Body: ollamaRequest{
			Model:   o.model,
			Prompt:  prompt,
			Stream:  false,
			Options: ollamaOptions{Temperature: ollamaTemperature},
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	script := stripFences(resp.Response)
	if script == "" {
		return "", fmt.Errorf("ollama returned an empty script")
	}
	if o.log != nil {
		o.log.Debug("script generated",
			applogger.String("writer", o.Name()),
			applogger.String("model", o.model),
			applogger.Duration("took", time.Since(start)))
	}
	return script, nil
}
