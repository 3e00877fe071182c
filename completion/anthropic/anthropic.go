// Package anthropic provides a completion.Service backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
)

// Options configures the Anthropic completion adapter (model id, max tokens,
// temperature, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	MaxTokens   int64
	Temperature float64
	APIKey      string
}

// Service wraps the Anthropic Messages API behind completion.Service.
type Service struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic completion service using the official client.
func New(optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens:   4096,
		Temperature: 0.7,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic completion service from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens:   4096,
		Temperature: 0.7,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{client: client, opts: opts}
}

// Backend implements completion.Service.
func (s *Service) Backend() string { return "anthropic" }

// Complete implements completion.Service. The request history is folded into
// the message list ahead of the prompt; request overrides for max tokens and
// temperature take precedence over the adapter defaults.
func (s *Service) Complete(ctx context.Context, req completion.Request) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = completion.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       s.opts.Model,
		Messages:    buildMessages(req),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: anthropic.Float(s.opts.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if system := buildSystem(req); len(system) > 0 {
		params.System = system
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", s.mapError(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return text, nil
}

// buildMessages converts the request history plus prompt into Anthropic
// message params. History is assumed to already be windowed by the caller.
func buildMessages(req completion.Request) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))
	return messages
}

// buildSystem assembles the system blocks, appending the structured-output
// hint when a response schema is requested.
func buildSystem(req completion.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.System != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.System})
	}
	if len(req.ResponseSchema) > 0 {
		if hint, err := json.Marshal(req.ResponseSchema); err == nil {
			blocks = append(blocks, anthropic.TextBlockParam{
				Text: "Respond with a single JSON object matching this schema, no surrounding prose: " + string(hint),
			})
		}
	}
	return blocks
}

// mapError converts SDK errors into typed completion errors.
func (s *Service) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &completion.Error{Code: completion.ErrorCodeTimeout, Backend: s.Backend(), Message: "request timed out", Err: err}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return &completion.Error{Code: completion.ErrorCodeRateLimited, Backend: s.Backend(), Message: "rate limited", Err: err}
		case apiErr.StatusCode == 408 || apiErr.StatusCode == 504:
			return &completion.Error{Code: completion.ErrorCodeTimeout, Backend: s.Backend(), Message: "upstream timeout", Err: err}
		}
	}

	return &completion.Error{Code: completion.ErrorCodeUnavailable, Backend: s.Backend(), Message: "anthropic api error", Err: err}
}

// compile-time interface check
var _ completion.Service = (*Service)(nil)
