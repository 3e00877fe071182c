// Package openai provides a completion.Service backed by the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI completion adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Service wraps the OpenAI Chat Completions API behind completion.Service.
type Service struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI completion service using the official client.
// The API key is read from the environment by the SDK.
func New(optFns ...func(o *Options)) *Service {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI completion service from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

// Backend implements completion.Service.
func (s *Service) Backend() string { return "openai" }

// Complete implements completion.Service.
func (s *Service) Complete(ctx context.Context, req completion.Request) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = completion.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               s.opts.Model,
		Temperature:         openai.Float(s.opts.Temperature),
		MaxCompletionTokens: openai.Int(s.opts.MaxCompletionTokens),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", s.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &completion.Error{
			Code:    completion.ErrorCodeUnavailable,
			Backend: s.Backend(),
			Message: "no choices returned",
			Err:     fmt.Errorf("empty response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages converts the request into OpenAI chat messages: system
// prompt (plus structured-output hint) first, then windowed history, then
// the prompt as the final user message.
func buildMessages(req completion.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if system := buildSystem(req); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, m := range req.History {
		switch m.Role {
		case core.RoleAgent:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Prompt))
	return messages
}

func buildSystem(req completion.Request) string {
	system := req.System
	if len(req.ResponseSchema) > 0 {
		if hint, err := json.Marshal(req.ResponseSchema); err == nil {
			if system != "" {
				system += "\n\n"
			}
			system += "Respond with a single JSON object matching this schema, no surrounding prose: " + string(hint)
		}
	}
	return system
}

// mapError converts SDK errors into typed completion errors.
func (s *Service) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &completion.Error{Code: completion.ErrorCodeTimeout, Backend: s.Backend(), Message: "request timed out", Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return &completion.Error{Code: completion.ErrorCodeRateLimited, Backend: s.Backend(), Message: "rate limited", Err: err}
		case apiErr.StatusCode == 408 || apiErr.StatusCode == 504:
			return &completion.Error{Code: completion.ErrorCodeTimeout, Backend: s.Backend(), Message: "upstream timeout", Err: err}
		}
	}

	return &completion.Error{Code: completion.ErrorCodeUnavailable, Backend: s.Backend(), Message: "openai api error", Err: err}
}

// compile-time interface check
var _ completion.Service = (*Service)(nil)
