package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
)

const (
	// DefaultHistoryWindow is how many trailing conversation messages are
	// forwarded to the completion backend.
	DefaultHistoryWindow = 6

	// DefaultHistoryCharLimit caps each forwarded message's content so a
	// single oversized message cannot dominate the prompt.
	DefaultHistoryCharLimit = 1000
)

// CompletionAgentOptions configures a CompletionAgent.
type CompletionAgentOptions struct {
	// Memory, when set, supplies the conversation history window forwarded
	// with each completion call.
	Memory core.ConversationMemory

	// Deliverables, when set together with DeliverableName, receives the
	// agent's successful output as a named artifact.
	Deliverables    core.DeliverableStore
	DeliverableName string

	// PromptTemplate renders the user prompt. It receives .Input (the raw
	// user request) and .Params (the classified intent parameters). The
	// default forwards the input unchanged.
	PromptTemplate string

	HistoryWindow    int
	HistoryCharLimit int
	MaxTokens        int64
	Temperature      float64
	Logger           logging.Logger
}

// CompletionAgent is an Agent whose Execute is a single completion call:
// resolve the instruction, window the conversation history, render the
// prompt, call the service and return its text as the payload.
type CompletionAgent struct {
	*BaseAgent
	service     completion.Service
	instruction Instruction
	opts        CompletionAgentOptions
}

// NewCompletionAgent constructs a completion-backed agent.
func NewCompletionAgent(name, description string, capabilities []core.Capability, service completion.Service, instruction Instruction, optFns ...func(o *CompletionAgentOptions)) *CompletionAgent {
	opts := CompletionAgentOptions{
		PromptTemplate:   "{{.Input}}",
		HistoryWindow:    DefaultHistoryWindow,
		HistoryCharLimit: DefaultHistoryCharLimit,
		Temperature:      0.7,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CompletionAgent{
		BaseAgent:   NewBaseAgent(name, description, capabilities),
		service:     service,
		instruction: instruction,
		opts:        opts,
	}
}

// Execute implements core.Agent. Errors are returned for the executor to
// contain; a successful run's payload is the completion text.
func (a *CompletionAgent) Execute(ctx context.Context, task *core.TaskContext) (core.AgentResult, error) {
	system, err := a.instruction.Resolve(task)
	if err != nil {
		return core.AgentResult{}, fmt.Errorf("resolve instruction: %w", err)
	}

	prompt, err := a.renderPrompt(task)
	if err != nil {
		return core.AgentResult{}, fmt.Errorf("render prompt: %w", err)
	}

	response, err := a.service.Complete(ctx, completion.Request{
		Prompt:      prompt,
		System:      system,
		History:     a.historyWindow(task.SessionID),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return core.AgentResult{}, fmt.Errorf("completion call: %w", err)
	}

	a.saveDeliverable(task.SessionID, response)

	return core.AgentResult{
		AgentName: a.Name(),
		Success:   true,
		Payload:   response,
	}, nil
}

func (a *CompletionAgent) renderPrompt(task *core.TaskContext) (string, error) {
	params := map[string]string{}
	if task.Intent != nil && task.Intent.Parameters != nil {
		params = task.Intent.Parameters
	}
	return util.RenderTemplate(a.opts.PromptTemplate, map[string]any{
		"Input":  task.UserInput,
		"Params": params,
	})
}

// historyWindow returns the trailing conversation messages, each truncated
// to the configured character limit. Memory being unset or the session being
// unknown both yield an empty window.
func (a *CompletionAgent) historyWindow(sessionID string) []core.Message {
	if a.opts.Memory == nil || sessionID == "" {
		return nil
	}

	history, err := a.opts.Memory.History(sessionID)
	if err != nil {
		return nil
	}
	if len(history) > a.opts.HistoryWindow {
		history = history[len(history)-a.opts.HistoryWindow:]
	}

	out := make([]core.Message, len(history))
	for i, msg := range history {
		if runes := []rune(msg.Content); len(runes) > a.opts.HistoryCharLimit {
			msg.Content = string(runes[:a.opts.HistoryCharLimit])
		}
		out[i] = msg
	}
	return out
}

// saveDeliverable persists the response as a named artifact. Failure is
// logged, not fatal: the orchestration result already carries the payload.
func (a *CompletionAgent) saveDeliverable(sessionID, response string) {
	if a.opts.Deliverables == nil || a.opts.DeliverableName == "" || sessionID == "" {
		return
	}
	if err := a.opts.Deliverables.Save(sessionID, a.opts.DeliverableName, []byte(response)); err != nil {
		a.opts.Logger.Warn("Failed to save deliverable", "agent", a.Name(), "name", a.opts.DeliverableName, "error", err)
	}
}

// compile-time interface check
var _ core.Agent = (*CompletionAgent)(nil)
