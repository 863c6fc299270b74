package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/ratelimit"
)

// DefaultMaxRetries is how often the SDK retries transient API failures
const DefaultMaxRetries = 2

// ErrEmptyCompletion is returned when a completion carries no text
var ErrEmptyCompletion = errors.New("empty completion")

// Completer produces a completion for a system and user prompt
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Client is a Completer backed by the Anthropic Messages API
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	limiter     *ratelimit.MultiLimiter
	log         *logger.Logger
}

var _ Completer = (*Client)(nil)

// NewClient creates an Anthropic client. limiter may be nil.
func NewClient(cfg config.AnthropicConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	return &Client{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(DefaultMaxRetries),
		),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		limiter:     limiter,
		log:         log.WithComponent("ai"),
	}
}

// Complete sends one user turn and returns the trimmed text of the reply.
// A reply cut off by the token limit is returned as is and logged.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, ratelimit.LimiterAnthropic); err != nil {
			return "", fmt.Errorf("rate limit error: %w", err)
		}
	}

	log := c.log.With().Str("model", c.model).Logger()
	log.Debug().Int("max_tokens", c.maxTokens).Msg("Sending request to Claude")

	message, err := c.client.Messages.New(ctx, c.params(systemPrompt, userMessage))
	if err != nil {
		log.Error().Err(err).Msg("Claude API error")
		return "", fmt.Errorf("claude API error: %w", err)
	}

	text := replyText(message)

	event := log.Debug()
	if message.StopReason == anthropic.StopReasonMaxTokens {
		event = log.Warn()
	}
	event.
		Str("stop_reason", string(message.StopReason)).
		Int64("input_tokens", message.Usage.InputTokens).
		Int64("output_tokens", message.Usage.OutputTokens).
		Msg("Received Claude response")

	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (c *Client) params(systemPrompt, userMessage string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	}
}

func replyText(message *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
