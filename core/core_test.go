package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTaskContext(t *testing.T) {
	task := NewTaskContext("task-1", "create a charter", "session-1")

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "create a charter", task.UserInput)
	assert.Equal(t, "session-1", task.SessionID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Nil(t, task.Intent)
	assert.Empty(t, task.Results())
}

func TestTaskContext_AddResult(t *testing.T) {
	task := NewTaskContext("task-1", "input", "session-1")

	task.AddResult(AgentResult{AgentName: "DocAgent", Success: true, Payload: "charter"})
	task.AddResult(AgentResult{AgentName: "RiskAgent", Success: false, Error: "boom"})

	res, ok := task.Result("DocAgent")
	assert.True(t, ok)
	assert.True(t, res.Success)
	assert.Equal(t, "charter", res.Payload)

	_, ok = task.Result("CostAgent")
	assert.False(t, ok)

	assert.Equal(t, []string{"DocAgent", "RiskAgent"}, task.AgentsUsed())
}

func TestTaskContext_ResultsSnapshot(t *testing.T) {
	task := NewTaskContext("task-1", "input", "session-1")
	task.AddResult(AgentResult{AgentName: "DocAgent", Success: true})

	snapshot := task.Results()
	snapshot["Injected"] = AgentResult{AgentName: "Injected"}

	_, ok := task.Result("Injected")
	assert.False(t, ok, "mutating the snapshot must not affect the context")
}

func TestTaskContext_ConcurrentAddResult(t *testing.T) {
	task := NewTaskContext("task-1", "input", "session-1")

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			task.AddResult(AgentResult{AgentName: n, Success: true})
		}(name)
	}
	wg.Wait()

	assert.Len(t, task.Results(), len(names))
}

func TestDescribeAgentCopiesCapabilities(t *testing.T) {
	a := &staticAgent{name: "DocAgent", caps: []Capability{CapabilityProjectCharter}}

	desc := DescribeAgent(a)
	desc.Capabilities[0] = CapabilityGeneralConversation

	assert.Equal(t, CapabilityProjectCharter, a.caps[0])
}

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"duplicate agent", &DuplicateAgentError{Name: "DocAgent"}, `agent "DocAgent" is already registered`},
		{"no agent available", &NoAgentAvailableError{Capability: CapabilityRiskRegister}, `no agent available for capability "risk_register"`},
		{"session not found", &SessionNotFoundError{SessionID: "s1"}, `session "s1" not found`},
		{"orchestration", &OrchestrationError{Stage: "synthesize", Message: "all agents failed"}, "orchestration failed at synthesize: all agents failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOrchestrationError_Unwrap(t *testing.T) {
	cause := errors.New("completion unavailable")
	err := &OrchestrationError{Stage: "dispatch", Message: "primary failed", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "completion unavailable")
}

type staticAgent struct {
	name string
	caps []Capability
}

func (a *staticAgent) Name() string               { return a.name }
func (a *staticAgent) Description() string        { return "static test agent" }
func (a *staticAgent) Capabilities() []Capability { return a.caps }
func (a *staticAgent) Execute(_ context.Context, _ *TaskContext) (AgentResult, error) {
	return AgentResult{AgentName: a.name, Success: true}, nil
}
