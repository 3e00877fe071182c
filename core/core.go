package core

import (
	"sort"
	"sync"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks messages authored by the end user.
	RoleUser Role = "user"
	// RoleAgent marks messages authored by an agent.
	RoleAgent Role = "agent"
)

// Message is a single entry in a session's conversation history. Order is a
// monotonically increasing integer unique within the session; relative order
// of surviving messages is preserved across evictions.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

// Intent is the classified purpose of a user request. Confidence is in
// [0,1]; values below the orchestrator's configured threshold trigger
// fallback routing to the general conversation capability.
type Intent struct {
	Kind       string            `json:"kind"`
	Confidence float64           `json:"confidence"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Reasoning  string            `json:"reasoning,omitempty"`
}

// AgentResult records the outcome of a single agent execution. A failed
// execution carries the error message; Payload is only meaningful when
// Success is true.
type AgentResult struct {
	AgentName string `json:"agent_name"`
	Success   bool   `json:"success"`
	Payload   any    `json:"payload,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TaskContext carries the per-request orchestration state. It is created by
// the orchestration call that owns it and is never shared across concurrent
// requests; results are only ever appended, never removed.
type TaskContext struct {
	ID        string
	UserInput string
	SessionID string
	CreatedAt time.Time

	// Populated by routing.
	Intent          *Intent
	PrimaryAgent    string
	SecondaryAgents []string

	mu      sync.Mutex
	results map[string]AgentResult
}

// NewTaskContext constructs a TaskContext for one orchestration call.
func NewTaskContext(id, userInput, sessionID string) *TaskContext {
	return &TaskContext{
		ID:        id,
		UserInput: userInput,
		SessionID: sessionID,
		CreatedAt: time.Now(),
		results:   make(map[string]AgentResult),
	}
}

// AddResult records an agent's result under its name. Safe for concurrent
// use by fan-out dispatch goroutines.
func (t *TaskContext) AddResult(res AgentResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[res.AgentName] = res
}

// Result returns the recorded result for the named agent.
func (t *TaskContext) Result(agentName string) (AgentResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, ok := t.results[agentName]
	return res, ok
}

// Results returns a snapshot of all recorded results keyed by agent name.
func (t *TaskContext) Results() map[string]AgentResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]AgentResult, len(t.results))
	for k, v := range t.results {
		out[k] = v
	}
	return out
}

// AgentsUsed returns the names of all agents with a recorded result, sorted
// for deterministic output.
func (t *TaskContext) AgentsUsed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.results))
	for name := range t.results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OrchestrationResult is the structured terminal value of one orchestration
// call. It is always populated: a failed run carries Error instead of
// Payload, never a raw agent error leaking through.
type OrchestrationResult struct {
	TaskID    string  `json:"task_id"`
	Success   bool    `json:"success"`
	Payload   any     `json:"payload,omitempty"`
	Error     string  `json:"error,omitempty"`
	AgentUsed string  `json:"agent_used,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
}
