package agentcrew

import (
	"context"
	"testing"

	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCrew(t *testing.T, svc *completion.MockService, optFns ...func(o *Options)) *Crew {
	t.Helper()
	crew := New(svc, optFns...)
	require.NoError(t, crew.RegisterDefaults())
	return crew
}

func TestCrew_RegisterDefaults(t *testing.T) {
	crew := newTestCrew(t, completion.NewMockService())

	agents := crew.Agents()
	require.Len(t, agents, 4)

	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	assert.ElementsMatch(t, []string{"charter_agent", "risk_agent", "cost_agent", "general_agent"}, names)

	// Re-registering is a duplicate-name error.
	var dup *core.DuplicateAgentError
	assert.ErrorAs(t, crew.RegisterDefaults(), &dup)
}

func TestCrew_SubmitTask_RoutesToSpecialist(t *testing.T) {
	svc := completion.NewMockService()
	svc.AddResponse("risk register", "| Risk | Probability | Impact |")
	crew := newTestCrew(t, svc)

	// The mock returns non-JSON for the classification call, so the
	// heuristic fallback routes this to the risk agent.
	result, err := crew.SubmitTask(context.Background(), "I need a risk register for project 13", "s1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "risk_agent", result.AgentUsed)
	assert.Equal(t, "| Risk | Probability | Impact |", result.Payload)
	require.NotNil(t, result.Intent)
	assert.Equal(t, "risk_analysis", result.Intent.Kind)
	assert.Equal(t, "13", result.Intent.Parameters["project_id"])
}

func TestCrew_SubmitTask_RecordsHistory(t *testing.T) {
	crew := newTestCrew(t, completion.NewMockService())

	_, err := crew.SubmitTask(context.Background(), "hello there", "s1")
	require.NoError(t, err)

	history, err := crew.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, "hello there", history[0].Content)
	assert.Equal(t, core.RoleAgent, history[1].Role)

	require.NoError(t, crew.ClearHistory("s1"))
	_, err = crew.History("s1")
	var notFound *core.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCrew_SavesDeliverable(t *testing.T) {
	svc := completion.NewMockService()
	svc.AddResponse("charter", "# Charter")
	crew := newTestCrew(t, svc)

	result, err := crew.SubmitTask(context.Background(), "Write a project charter for the rollout", "s1")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "charter_agent", result.AgentUsed)

	data, err := crew.Deliverables().Get("s1", "charter.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Charter"), data)
}

func TestCrew_Evaluation(t *testing.T) {
	svc := completion.NewMockService()
	svc.AddResponse("Generate evaluation question", `{"question": "How do you handle scope changes?"}`)
	svc.AddResponse("Analyze their latest answer", `{"estimated_level": "competent", "confidence": 0.6, "strengths": ["structure"], "weaknesses": []}`)
	svc.AddResponse("final classification", `{"level": "competent", "confidence": 0.8}`)

	crew := newTestCrew(t, svc, func(o *Options) {
		o.MaxQuestions = 2
	})

	run, question, err := crew.StartEvaluation(context.Background(), "eval-1")
	require.NoError(t, err)
	assert.Equal(t, "How do you handle scope changes?", question)

	step, err := crew.AdvanceEvaluation(context.Background(), run, "I re-baseline and negotiate")
	require.NoError(t, err)
	require.False(t, step.Done)
	assert.Equal(t, "How do you handle scope changes?", step.Question)

	step, err = crew.AdvanceEvaluation(context.Background(), run, "Another answer")
	require.NoError(t, err)
	require.True(t, step.Done)
	require.NotNil(t, step.Report)
	assert.Equal(t, 2, step.Report.QuestionsAsked)
	assert.Equal(t, []string{"structure"}, step.Report.Strengths)

	// Session history holds the interview dialogue, not the internal
	// question/analysis prompts.
	history, err := crew.History("eval-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, core.RoleAgent, history[0].Role)
	assert.Equal(t, "How do you handle scope changes?", history[0].Content)
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, "I re-baseline and negotiate", history[1].Content)
}

func TestCrew_RoutingTableSnapshot(t *testing.T) {
	crew := newTestCrew(t, completion.NewMockService())

	table := crew.RoutingTable()
	assert.Equal(t, core.CapabilityRiskRegister, table["risk_analysis"])

	table["risk_analysis"] = core.CapabilityGeneralConversation
	assert.Equal(t, core.CapabilityRiskRegister, crew.RoutingTable()["risk_analysis"])
}
