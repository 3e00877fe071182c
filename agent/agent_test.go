package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/deliverable"
	"github.com/hupe1980/agentcrew/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAgent_CopiesCapabilities(t *testing.T) {
	caps := []core.Capability{core.CapabilityProjectCharter}
	base := NewBaseAgent("a", "desc", caps)

	caps[0] = core.CapabilityRiskRegister
	assert.Equal(t, []core.Capability{core.CapabilityProjectCharter}, base.Capabilities())

	got := base.Capabilities()
	got[0] = core.CapabilityCostEstimation
	assert.Equal(t, []core.Capability{core.CapabilityProjectCharter}, base.Capabilities())
}

func TestInstruction_Resolve(t *testing.T) {
	task := core.NewTaskContext("t1", "input", "s1")

	static := StaticInstruction("be helpful")
	text, err := static.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, "be helpful", text)

	dynamic := DynamicInstruction(func(task *core.TaskContext) (string, error) {
		return "task " + task.ID, nil
	})
	text, err = dynamic.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, "task t1", text)

	var zero Instruction
	text, err = zero.Resolve(task)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCompletionAgent_Execute(t *testing.T) {
	svc := completion.NewMockService()
	svc.AddResponse("Create a charter", "# Project Charter")

	a := NewCompletionAgent("charter_agent", "charters", []core.Capability{core.CapabilityProjectCharter}, svc, StaticInstruction("you write charters"))

	task := core.NewTaskContext("t1", "Create a charter", "s1")
	res, err := a.Execute(context.Background(), task)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "charter_agent", res.AgentName)
	assert.Equal(t, "# Project Charter", res.Payload)

	reqs := svc.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "you write charters", reqs[0].System)
	assert.Equal(t, "Create a charter", reqs[0].Prompt)
}

func TestCompletionAgent_ExecuteError(t *testing.T) {
	svc := completion.NewMockService()
	svc.FailWith(errors.New("backend down"))

	a := NewCompletionAgent("a", "", []core.Capability{core.CapabilityGeneralConversation}, svc, Instruction{})

	_, err := a.Execute(context.Background(), core.NewTaskContext("t1", "hi", "s1"))
	assert.ErrorContains(t, err, "backend down")
}

func TestCompletionAgent_HistoryWindow(t *testing.T) {
	mem := memory.NewInMemoryStore()
	for i := 0; i < 10; i++ {
		_, err := mem.Append("s1", core.RoleUser, "msg")
		require.NoError(t, err)
	}

	svc := completion.NewMockService()
	a := NewCompletionAgent("a", "", []core.Capability{core.CapabilityGeneralConversation}, svc, Instruction{}, func(o *CompletionAgentOptions) {
		o.Memory = mem
		o.HistoryWindow = 6
	})

	_, err := a.Execute(context.Background(), core.NewTaskContext("t1", "hi", "s1"))
	require.NoError(t, err)

	reqs := svc.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].History, 6)
	// The window keeps the most recent messages.
	assert.Equal(t, 4, reqs[0].History[0].Order)
	assert.Equal(t, 9, reqs[0].History[5].Order)
}

func TestCompletionAgent_HistoryCharLimit(t *testing.T) {
	mem := memory.NewInMemoryStore()
	long := make([]rune, 1500)
	for i := range long {
		long[i] = 'x'
	}
	_, err := mem.Append("s1", core.RoleUser, string(long))
	require.NoError(t, err)

	svc := completion.NewMockService()
	a := NewCompletionAgent("a", "", []core.Capability{core.CapabilityGeneralConversation}, svc, Instruction{}, func(o *CompletionAgentOptions) {
		o.Memory = mem
	})

	_, err = a.Execute(context.Background(), core.NewTaskContext("t1", "hi", "s1"))
	require.NoError(t, err)

	reqs := svc.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].History, 1)
	assert.Len(t, reqs[0].History[0].Content, DefaultHistoryCharLimit)

	// The stored message is untouched.
	stored, err := mem.History("s1")
	require.NoError(t, err)
	assert.Len(t, stored[0].Content, 1500)
}

func TestCompletionAgent_SavesDeliverable(t *testing.T) {
	svc := completion.NewMockService()
	svc.AddResponse("charter", "# Charter v1")
	store := deliverable.NewInMemoryStore()

	a := NewCharterAgent(svc, func(o *CompletionAgentOptions) {
		o.Deliverables = store
	})

	res, err := a.Execute(context.Background(), core.NewTaskContext("t1", "Write the charter", "s1"))
	require.NoError(t, err)
	assert.True(t, res.Success)

	data, err := store.Get("s1", "charter.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Charter v1"), data)
}

func TestDomainAgents_Capabilities(t *testing.T) {
	svc := completion.NewMockService()

	tests := []struct {
		agent core.Agent
		name  string
		caps  []core.Capability
	}{
		{NewCharterAgent(svc), "charter_agent", []core.Capability{core.CapabilityProjectCharter, core.CapabilityWBSCreation, core.CapabilityReportGeneration}},
		{NewRiskAgent(svc), "risk_agent", []core.Capability{core.CapabilityRiskRegister, core.CapabilityStakeholderMapping}},
		{NewCostAgent(svc), "cost_agent", []core.Capability{core.CapabilityCostEstimation, core.CapabilityBudgetManagement, core.CapabilityScheduleOptimization}},
		{NewGeneralAgent(svc), "general_agent", []core.Capability{core.CapabilityGeneralConversation}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.agent.Name())
			assert.Equal(t, tt.caps, tt.agent.Capabilities())
			assert.NotEmpty(t, tt.agent.Description())
		})
	}
}
