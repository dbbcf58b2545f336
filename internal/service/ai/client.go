package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/config"
	"github.com/morningistar/study-buddy/internal/model/chat"
)

// Generation constants. These are product decisions, not tunables; no
// per-request override exists.
const (
	maxTokens        = 1500
	temperature      = 0.7
	presencePenalty  = 0.1
	frequencyPenalty = 0.1
)

// ErrEmptyCompletion is returned when the provider answers without any
// usable text.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Client calls the completion provider to turn a conversation history into
// assistant reply text.
type Client struct {
	llm    llms.Model
	logger *zap.Logger
}

// NewClient builds a completion client from the injected provider
// configuration.
func NewClient(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return &Client{llm: llm, logger: logger}, nil
}

// Complete sends the tutoring system instruction plus the full message
// history to the provider and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, history []chat.Message) (string, error) {
	messages := BuildPrompt(history)

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
		llms.WithPresencePenalty(presencePenalty),
		llms.WithFrequencyPenalty(frequencyPenalty),
	)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("completion generated", zap.Int("length", len(text)))
	return text, nil
}
