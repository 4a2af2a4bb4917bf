package scriptwriter

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	applogger "StockScribe/pkg/logger"
)

const (
	DefaultAnthropicModel = "claude-sonnet-4-20250514"

	// anthropicMaxTokens bounds one narration script, a few minutes of
	// spoken text.
	anthropicMaxTokens = 2048
)

// Anthropic writes scripts through the Claude Messages API.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
	log    *applogger.Logger
}

func NewAnthropic(apiKey, model string, log *applogger.Logger) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{
		client: &client,
		model:  anthropic.Model(model),
		log:    log,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			out.WriteString(block.Text)
		}
	}
	script := stripFences(out.String())
	if script == "" {
		return "", fmt.Errorf("anthropic returned an empty script")
	}
	return script, nil
}
