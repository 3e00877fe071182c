package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDispatcher answers question, analysis and level-determination
// prompts with canned payloads, keyed on prompt markers.
type scriptedDispatcher struct {
	questions      []string
	analyses       []string
	level          string
	questionIndex  int
	analysisIndex  int
	err            error
	submittedTasks int
	sessionIDs     []string
}

func (d *scriptedDispatcher) SubmitTask(ctx context.Context, userInput, sessionID string) (*core.OrchestrationResult, error) {
	d.submittedTasks++
	d.sessionIDs = append(d.sessionIDs, sessionID)
	if d.err != nil {
		return nil, d.err
	}

	var payload string
	switch {
	case strings.Contains(userInput, "Generate evaluation question"):
		payload = d.questions[d.questionIndex%len(d.questions)]
		d.questionIndex++
	case strings.Contains(userInput, "Analyze their latest answer"):
		payload = d.analyses[d.analysisIndex%len(d.analyses)]
		d.analysisIndex++
	case strings.Contains(userInput, "final classification"):
		payload = d.level
	default:
		return nil, fmt.Errorf("unexpected prompt: %s", userInput)
	}

	return &core.OrchestrationResult{TaskID: "t", Success: true, Payload: payload}, nil
}

func neverFinishDispatcher() *scriptedDispatcher {
	return &scriptedDispatcher{
		questions: []string{`{"question": "How do you plan a project?"}`},
		analyses:  []string{`{"estimated_level": "novice", "confidence": 0.4, "strengths": ["clarity"], "weaknesses": ["no risk awareness"]}`, `{"estimated_level": "competent", "confidence": 0.5}`},
		level:     `{"level": "advanced_beginner", "confidence": 0.8, "recommendations": ["study risk planning"]}`,
	}
}

func TestStart_AsksFirstQuestion(t *testing.T) {
	runner := NewRunner(neverFinishDispatcher())

	run, question, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "How do you plan a project?", question)
	assert.Equal(t, StateAwaitResponse, run.State())
	assert.Equal(t, 1, run.QuestionCount())
	assert.Equal(t, "s1", run.SessionID())
}

func TestStart_FallsBackToRawQuestionText(t *testing.T) {
	d := neverFinishDispatcher()
	d.questions = []string{"Just a plain question, no JSON?"}
	runner := NewRunner(d)

	_, question, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Just a plain question, no JSON?", question)
}

func TestStart_DispatchError(t *testing.T) {
	runner := NewRunner(&scriptedDispatcher{err: errors.New("backend down")})

	_, _, err := runner.Start(context.Background(), "s1")
	assert.ErrorContains(t, err, "backend down")
}

// Alternating estimates never stabilize, so the run must still terminate on
// the question bound.
func TestRun_TerminatesOnMaxQuestions(t *testing.T) {
	runner := NewRunner(neverFinishDispatcher(), func(o *RunnerOptions) {
		o.MaxQuestions = 3
	})

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	var step Step
	for i := 0; i < 3; i++ {
		require.Less(t, run.QuestionCount(), 4)
		step, err = runner.Advance(context.Background(), run, "my answer")
		require.NoError(t, err)
		if step.Done {
			break
		}
	}

	require.True(t, step.Done)
	require.NotNil(t, step.Report)
	assert.Equal(t, StateTerminal, run.State())
	assert.Equal(t, 3, run.QuestionCount())
	assert.Equal(t, LevelAdvancedBeginner, step.Report.Level)
	assert.InDelta(t, 0.8, step.Report.Confidence, 1e-9)
	assert.Equal(t, []string{"study risk planning"}, step.Report.Recommendations)
}

func TestRun_MergesFindingsAsSetUnion(t *testing.T) {
	d := neverFinishDispatcher()
	// Same strength twice plus one new weakness per analysis.
	d.analyses = []string{
		`{"estimated_level": "novice", "strengths": ["clarity"], "weaknesses": ["scope creep"]}`,
		`{"estimated_level": "competent", "strengths": ["clarity"], "weaknesses": ["no baseline"]}`,
	}
	runner := NewRunner(d, func(o *RunnerOptions) { o.MaxQuestions = 2 })

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "answer one")
	require.NoError(t, err)
	require.False(t, step.Done)

	step, err = runner.Advance(context.Background(), run, "answer two")
	require.NoError(t, err)
	require.True(t, step.Done)

	assert.Equal(t, []string{"clarity"}, step.Report.Strengths)
	assert.Equal(t, []string{"no baseline", "scope creep"}, step.Report.Weaknesses)
}

func TestRun_EarlyFinishOnStableEstimates(t *testing.T) {
	d := neverFinishDispatcher()
	d.analyses = []string{`{"estimated_level": "expert", "confidence": 0.9}`}
	d.level = `{"level": "expert", "confidence": 0.95}`
	runner := NewRunner(d, func(o *RunnerOptions) {
		o.MaxQuestions = 7
		o.MinTurnsForEarlyFinish = 5
		o.StableEstimates = 3
	})

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	var step Step
	for i := 0; i < 7; i++ {
		step, err = runner.Advance(context.Background(), run, "expert answer")
		require.NoError(t, err)
		if step.Done {
			break
		}
	}

	require.True(t, step.Done)
	// Five identical estimates satisfy both the minimum-turns and the
	// stability rule, well before the hard bound.
	assert.Equal(t, 5, run.QuestionCount())
	assert.Equal(t, LevelExpert, step.Report.Level)
}

func TestRun_MalformedAnalysisLeavesFindingsUnchanged(t *testing.T) {
	d := neverFinishDispatcher()
	d.analyses = []string{"definitely not json"}
	runner := NewRunner(d, func(o *RunnerOptions) { o.MaxQuestions = 2 })

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "answer")
	require.NoError(t, err)
	require.False(t, step.Done)

	turns := run.Turns()
	require.Len(t, turns, 2)
	assert.Nil(t, turns[0].Analysis)

	step, err = runner.Advance(context.Background(), run, "answer")
	require.NoError(t, err)
	require.True(t, step.Done)
	assert.Empty(t, step.Report.Strengths)
	assert.Empty(t, step.Report.Weaknesses)
}

func TestRun_DetermineLevelCannotFail(t *testing.T) {
	d := neverFinishDispatcher()
	d.level = "not parseable at all"
	runner := NewRunner(d, func(o *RunnerOptions) { o.MaxQuestions = 1 })

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "answer")
	require.NoError(t, err)
	require.True(t, step.Done)
	assert.Equal(t, DefaultLevel, step.Report.Level)
	assert.Equal(t, StateTerminal, run.State())
}

func TestRun_UnknownLevelFallsBackToDefault(t *testing.T) {
	d := neverFinishDispatcher()
	d.level = `{"level": "grandmaster", "confidence": 1.0}`
	runner := NewRunner(d, func(o *RunnerOptions) { o.MaxQuestions = 1 })

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "answer")
	require.NoError(t, err)
	require.True(t, step.Done)
	assert.Equal(t, DefaultLevel, step.Report.Level)
}

func TestRun_RecordsDialogueNotInternalPrompts(t *testing.T) {
	mem := memory.NewInMemoryStore()
	d := neverFinishDispatcher()
	runner := NewRunner(d, func(o *RunnerOptions) {
		o.MaxQuestions = 2
		o.Memory = mem
	})

	run, question, err := runner.Start(context.Background(), "eval-1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "my real answer")
	require.NoError(t, err)
	require.False(t, step.Done)

	_, err = runner.Advance(context.Background(), run, "my second answer")
	require.NoError(t, err)

	// Session memory holds the spoken dialogue only: question text as agent
	// messages, answers as user messages, no meta-prompts or JSON envelopes.
	history, err := mem.History("eval-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, core.RoleAgent, history[0].Role)
	assert.Equal(t, question, history[0].Content)
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, "my real answer", history[1].Content)
	assert.Equal(t, core.RoleAgent, history[2].Role)
	assert.Equal(t, core.RoleUser, history[3].Role)
	for _, msg := range history {
		assert.NotContains(t, msg.Content, "assessing a project manager")
		assert.NotContains(t, msg.Content, `"question"`)
	}

	// Every internal dispatch bypassed conversation memory.
	for _, id := range d.sessionIDs {
		assert.Empty(t, id)
	}
}

func TestAdvance_CancelledContextLeavesRunUnchanged(t *testing.T) {
	runner := NewRunner(neverFinishDispatcher())

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Advance(ctx, run, "late answer")
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StateAwaitResponse, run.State())
	assert.Equal(t, 1, run.QuestionCount())
	turns := run.Turns()
	require.Len(t, turns, 1)
	assert.Empty(t, turns[0].Response)
	assert.Nil(t, turns[0].Analysis)
}

func TestAdvance_RejectsWrongState(t *testing.T) {
	runner := NewRunner(neverFinishDispatcher(), func(o *RunnerOptions) { o.MaxQuestions = 1 })

	run, _, err := runner.Start(context.Background(), "s1")
	require.NoError(t, err)

	step, err := runner.Advance(context.Background(), run, "answer")
	require.NoError(t, err)
	require.True(t, step.Done)

	// The run is terminal; delivering another response is a caller bug.
	_, err = runner.Advance(context.Background(), run, "another answer")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
