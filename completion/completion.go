// Package completion abstracts the external text-completion capability
// behind a minimal Service interface: given a prompt and constraints it
// returns text or a typed error. Concrete backends live in the anthropic and
// openai subpackages; MockService supports tests and offline demos.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
)

// DefaultTimeout bounds a completion call when the request does not carry
// its own timeout.
const DefaultTimeout = 60 * time.Second

// Request captures the normalized completion input produced by agents and
// the classifier. History, when present, is folded into the provider
// conversation ahead of the prompt.
type Request struct {
	Prompt      string         `json:"prompt"`
	System      string         `json:"system,omitempty"`
	History     []core.Message `json:"history,omitempty"`
	MaxTokens   int64          `json:"max_tokens,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`

	// ResponseSchema is a JSON-schema hint for structured output. Backends
	// that cannot enforce it embed it in the prompt; callers must always
	// treat malformed output as a recoverable parse failure.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`

	// Timeout bounds this call. Zero means DefaultTimeout.
	Timeout time.Duration `json:"-"`
}

// Service is the opaque external text-completion collaborator. Complete is
// the only blocking point in the orchestration core; implementations must
// respect context cancellation and surface failures as *Error values.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Backend returns a short identifier for the underlying provider.
	Backend() string
}

// ErrorCode classifies completion failures.
type ErrorCode string

const (
	// ErrorCodeTimeout indicates the bounded wait elapsed.
	ErrorCodeTimeout ErrorCode = "timeout"
	// ErrorCodeRateLimited indicates the provider rejected the call due to
	// rate limiting.
	ErrorCodeRateLimited ErrorCode = "rate_limited"
	// ErrorCodeUnavailable indicates the provider could not serve the call.
	ErrorCodeUnavailable ErrorCode = "unavailable"
)

// Error is the typed failure of a completion call.
type Error struct {
	Code    ErrorCode
	Backend string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion %s (%s): %s: %v", e.Code, e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("completion %s (%s): %s", e.Code, e.Backend, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a completion timeout.
func IsTimeout(err error) bool { return hasCode(err, ErrorCodeTimeout) }

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool { return hasCode(err, ErrorCodeRateLimited) }

// IsUnavailable reports whether err is a provider availability failure.
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}

// MockService is a lightweight in-memory Service useful for tests and
// examples. Responses can be registered for exact prompts or prompt
// substrings; unmatched prompts get a generic echo response.
type MockService struct {
	mu        sync.Mutex
	keys      []string
	responses map[string]string
	err       error
	requests  []Request
}

// NewMockService constructs an empty mock completion service.
func NewMockService() *MockService {
	return &MockService{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion. The key matches
// an exact prompt or any prompt containing it as a substring; substring keys
// are tried in registration order, first match wins.
func (m *MockService) AddResponse(key, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.responses[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.responses[key] = response
}

// FailWith makes every subsequent Complete call return err.
func (m *MockService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a snapshot of all requests seen so far.
func (m *MockService) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Service.
func (m *MockService) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Code: ErrorCodeTimeout, Backend: m.Backend(), Message: "context done", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.responses[req.Prompt]; ok {
		return resp, nil
	}
	for _, key := range m.keys {
		if strings.Contains(req.Prompt, key) {
			return m.responses[key], nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", req.Prompt), nil
}

// Backend implements Service.
func (m *MockService) Backend() string { return "mock" }
