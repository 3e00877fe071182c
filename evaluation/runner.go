package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
)

// Dispatcher submits a task through the orchestration pipeline and returns
// its structured result. *orchestrator.Orchestrator satisfies this. The
// Runner always dispatches with an empty session id so its meta-prompts stay
// out of conversation memory.
type Dispatcher interface {
	SubmitTask(ctx context.Context, userInput, sessionID string) (*core.OrchestrationResult, error)
}

// Step is the outcome of advancing a run: either the next question or the
// terminal report.
type Step struct {
	Question string
	Done     bool
	Report   *Report
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// MaxQuestions is the hard bound on questions per run.
	MaxQuestions int

	// MinTurnsForEarlyFinish is the minimum number of analyzed turns before
	// the stability rule below may finish a run early.
	MinTurnsForEarlyFinish int

	// StableEstimates finishes a run early once this many consecutive
	// trailing analyses agree on the estimated level.
	StableEstimates int

	// Memory, when set, records the spoken dialogue of a run: each generated
	// question as an agent message, each response as a user message. The
	// runner's internal analysis and classification dispatches never reach it.
	Memory core.ConversationMemory

	Logger logging.Logger
}

// Runner drives evaluation runs over a Dispatcher. The Runner itself is
// stateless and safe for concurrent use; each Run is owned by one caller.
type Runner struct {
	dispatcher Dispatcher
	opts       RunnerOptions
}

// NewRunner constructs a Runner.
func NewRunner(dispatcher Dispatcher, optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{
		MaxQuestions:           7,
		MinTurnsForEarlyFinish: 5,
		StableEstimates:        3,
		Logger:                 logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{dispatcher: dispatcher, opts: opts}
}

// Start creates a run for the session and asks the first question.
func (r *Runner) Start(ctx context.Context, sessionID string) (*Run, string, error) {
	run := &Run{
		sessionID:    sessionID,
		state:        StateAskQuestion,
		maxQuestions: r.opts.MaxQuestions,
		strengths:    make(map[string]struct{}),
		weaknesses:   make(map[string]struct{}),
	}

	question, err := r.askQuestion(ctx, run)
	if err != nil {
		return nil, "", err
	}
	return run, question, nil
}

// Advance delivers the user's response and moves the machine forward. It
// returns either the next question or, once the question budget is spent or
// the estimates have stabilized, the terminal report.
func (r *Runner) Advance(ctx context.Context, run *Run, response string) (Step, error) {
	next, err := Next(run.state, SignalResponseReceived)
	if err != nil {
		return Step{}, err
	}
	// An already-cancelled caller must not leave a half-recorded turn behind.
	if err := ctx.Err(); err != nil {
		return Step{}, err
	}
	run.state = next
	run.turns[len(run.turns)-1].Response = response

	analysis := r.analyzeResponse(ctx, run)
	if err := ctx.Err(); err != nil {
		run.turns[len(run.turns)-1].Response = ""
		run.state = StateAwaitResponse
		return Step{}, err
	}
	run.mergeAnalysis(analysis)
	r.recordMessage(run, core.RoleUser, response)

	if run.questionCount < run.maxQuestions && !r.estimatesStable(run) {
		run.state, _ = Next(run.state, SignalContinue)
		question, err := r.askQuestion(ctx, run)
		if err != nil {
			return Step{}, err
		}
		return Step{Question: question}, nil
	}

	run.state, _ = Next(run.state, SignalFinish)
	r.determineLevel(ctx, run)
	run.state, _ = Next(run.state, SignalLevelDetermined)

	return Step{Done: true, Report: run.Report()}, nil
}

type questionPayload struct {
	Question string `json:"question" description:"the next evaluation question to ask"`
}

// askQuestion dispatches question generation and records the result as a new
// turn. A payload that fails to parse as JSON is used as the question text
// verbatim. The question text, not its JSON envelope, goes into conversation
// memory as an agent message.
func (r *Runner) askQuestion(ctx context.Context, run *Run) (string, error) {
	result, err := r.dispatcher.SubmitTask(ctx, r.questionPrompt(run), "")
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("generate question: %s", result.Error)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	question := payloadString(result.Payload)
	var payload questionPayload
	if err := util.DecodeJSONObject(question, &payload); err == nil && payload.Question != "" {
		question = payload.Question
	}

	run.turns = append(run.turns, Turn{Question: question})
	run.questionCount++

	next, err := Next(run.state, SignalQuestionAsked)
	if err != nil {
		return "", err
	}
	run.state = next
	r.recordMessage(run, core.RoleAgent, question)
	return question, nil
}

// analyzeResponse dispatches response analysis and returns the parsed
// findings. A dispatch or parse failure returns nil so a flaky analysis step
// can never wedge a run; the machine still advances.
func (r *Runner) analyzeResponse(ctx context.Context, run *Run) *Analysis {
	result, err := r.dispatcher.SubmitTask(ctx, r.analysisPrompt(run), "")
	if err != nil || !result.Success {
		r.opts.Logger.Warn("Response analysis failed, continuing without findings", "session_id", run.sessionID, "error", err)
		return nil
	}

	var analysis Analysis
	if err := util.DecodeJSONObject(payloadString(result.Payload), &analysis); err != nil {
		r.opts.Logger.Warn("Response analysis returned malformed output", "session_id", run.sessionID, "error", err)
		return nil
	}
	if _, ok := ParseLevel(string(analysis.EstimatedLevel)); !ok {
		analysis.EstimatedLevel = ""
	}
	return &analysis
}

type levelPayload struct {
	Level           string   `json:"level" description:"one of novice, advanced_beginner, competent, proficient, expert"`
	Confidence      float64  `json:"confidence" description:"classification confidence between 0 and 1"`
	Recommendations []string `json:"recommendations,omitempty" description:"development recommendations for the candidate"`
}

// determineLevel dispatches the final classification. This step cannot fail
// the run: any dispatch or parse failure yields the default level.
func (r *Runner) determineLevel(ctx context.Context, run *Run) {
	run.level = DefaultLevel

	result, err := r.dispatcher.SubmitTask(ctx, r.levelPrompt(run), "")
	if err != nil || !result.Success {
		r.opts.Logger.Warn("Level determination failed, using default level", "session_id", run.sessionID, "error", err)
		return
	}

	var payload levelPayload
	if err := util.DecodeJSONObject(payloadString(result.Payload), &payload); err != nil {
		r.opts.Logger.Warn("Level determination returned malformed output, using default level", "session_id", run.sessionID, "error", err)
		return
	}
	if level, ok := ParseLevel(payload.Level); ok {
		run.level = level
		run.confidence = payload.Confidence
		run.recommendations = payload.Recommendations
	}
}

// estimatesStable reports early finish: enough turns answered and the
// trailing analyses agreeing on a level.
func (r *Runner) estimatesStable(run *Run) bool {
	if len(run.turns) < r.opts.MinTurnsForEarlyFinish || r.opts.StableEstimates <= 0 {
		return false
	}
	if len(run.turns) < r.opts.StableEstimates {
		return false
	}

	var level Level
	for i := len(run.turns) - r.opts.StableEstimates; i < len(run.turns); i++ {
		a := run.turns[i].Analysis
		if a == nil || a.EstimatedLevel == "" {
			return false
		}
		if level == "" {
			level = a.EstimatedLevel
		} else if a.EstimatedLevel != level {
			return false
		}
	}
	return true
}

func (r *Runner) questionPrompt(run *Run) string {
	var b strings.Builder
	b.WriteString("You are assessing a project manager's competency. ")
	fmt.Fprintf(&b, "Generate evaluation question %d of at most %d.\n", run.questionCount+1, run.maxQuestions)
	writeTranscript(&b, run)
	b.WriteString("Ask one open question that probes a dimension not yet covered. ")
	b.WriteString(`Respond as JSON: {"question": "..."}`)
	return b.String()
}

func (r *Runner) analysisPrompt(run *Run) string {
	var b strings.Builder
	b.WriteString("You are assessing a project manager's competency. Analyze their latest answer.\n")
	writeTranscript(&b, run)
	b.WriteString("Respond as JSON: ")
	b.WriteString(`{"estimated_level": "novice|advanced_beginner|competent|proficient|expert", "confidence": 0.0, "strengths": [], "weaknesses": []}`)
	return b.String()
}

func (r *Runner) levelPrompt(run *Run) string {
	var b strings.Builder
	b.WriteString("You are assessing a project manager's competency. Based on the full transcript, produce the final classification.\n")
	writeTranscript(&b, run)
	b.WriteString("Respond as JSON: ")
	b.WriteString(`{"level": "novice|advanced_beginner|competent|proficient|expert", "confidence": 0.0, "recommendations": []}`)
	return b.String()
}

func writeTranscript(b *strings.Builder, run *Run) {
	if len(run.turns) == 0 {
		return
	}
	b.WriteString("Transcript so far:\n")
	for i, turn := range run.turns {
		fmt.Fprintf(b, "Q%d: %s\n", i+1, turn.Question)
		if turn.Response != "" {
			fmt.Fprintf(b, "A%d: %s\n", i+1, turn.Response)
		}
	}
	b.WriteString("\n")
}

// recordMessage appends one side of the spoken dialogue to conversation
// memory. Recording is best effort; a storage failure never fails the run.
func (r *Runner) recordMessage(run *Run, role core.Role, content string) {
	if r.opts.Memory == nil || run.sessionID == "" || content == "" {
		return
	}
	if _, err := r.opts.Memory.Append(run.sessionID, role, content); err != nil {
		r.opts.Logger.Warn("Failed to record evaluation message", "session_id", run.sessionID, "role", role, "error", err)
	}
}

func payloadString(payload any) string {
	if s, ok := payload.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", payload)
}
