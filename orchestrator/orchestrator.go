package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/agentcrew/classifier"
	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/registry"
	"golang.org/x/sync/errgroup"
)

// Classifier converts user input plus conversational context into an Intent.
// Implementations must never fail; degraded classification returns a
// low-confidence general intent instead of an error.
type Classifier interface {
	Classify(ctx context.Context, userInput string, history []core.Message) core.Intent
}

// defaultRoutingTable maps every known intent kind to exactly one default
// capability. The table is total: unknown kinds route to general
// conversation via capabilityFor.
var defaultRoutingTable = map[string]core.Capability{
	classifier.KindProjectCreation:       core.CapabilityProjectCharter,
	"create_charter":                     core.CapabilityProjectCharter,
	classifier.KindDocumentGeneration:    core.CapabilityProjectCharter,
	classifier.KindRiskAnalysis:          core.CapabilityRiskRegister,
	classifier.KindStakeholderManagement: core.CapabilityStakeholderMapping,
	classifier.KindScheduleManagement:    core.CapabilityScheduleOptimization,
	classifier.KindBudgetAnalysis:        core.CapabilityCostEstimation,
	classifier.KindReporting:             core.CapabilityReportGeneration,
	classifier.KindGeneral:               core.CapabilityGeneralConversation,
}

// defaultSecondaryCapabilities lists the capabilities consulted as
// secondaries when fan-out is enabled. Creating a project benefits from an
// initial risk and cost view alongside the charter.
var defaultSecondaryCapabilities = map[string][]core.Capability{
	classifier.KindProjectCreation: {core.CapabilityRiskRegister, core.CapabilityCostEstimation},
}

// Options configures an Orchestrator.
type Options struct {
	// Memory records the user/agent exchange of each successful run and
	// supplies classification context. Required for SubmitTask.
	Memory core.ConversationMemory

	// Completion, when set, backs the multi-result synthesis merge. Without
	// it (or on merge failure) synthesis degrades to the first successful
	// payload.
	Completion completion.Service

	// ConfidenceThreshold routes low-confidence intents to general
	// conversation instead of a specialist. Default 0.3.
	ConfidenceThreshold float64

	// EnableFanOut dispatches secondary agents after a successful primary.
	// Disabled by default: single-agent dispatch is the core policy.
	EnableFanOut bool

	// MaxParallelSecondaries bounds concurrent secondary executions.
	MaxParallelSecondaries int

	// RoutingTable overrides entries of the default intent→capability table.
	RoutingTable map[string]core.Capability

	// SecondaryCapabilities overrides the fan-out table.
	SecondaryCapabilities map[string][]core.Capability

	// Callbacks receives pipeline lifecycle events.
	Callbacks *CallbackManager

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Orchestrator drives the route → dispatch → synthesize pipeline. It holds
// only immutable-after-init references; per-call state lives in the
// TaskContext created for that call.
type Orchestrator struct {
	classifier  Classifier
	registry    *registry.CapabilityRegistry
	executor    *Executor
	routing     map[string]core.Capability
	secondaries map[string][]core.Capability
	opts        Options
}

// New constructs an orchestrator over the given classifier and registry.
func New(c Classifier, reg *registry.CapabilityRegistry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		ConfidenceThreshold:    0.3,
		MaxParallelSecondaries: 3,
		Callbacks:              NewCallbackManager(),
		Logger:                 logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	routing := make(map[string]core.Capability, len(defaultRoutingTable))
	for k, v := range defaultRoutingTable {
		routing[k] = v
	}
	for k, v := range opts.RoutingTable {
		routing[k] = v
	}

	secondaries := opts.SecondaryCapabilities
	if secondaries == nil {
		secondaries = defaultSecondaryCapabilities
	}

	return &Orchestrator{
		classifier:  c,
		registry:    reg,
		executor:    NewExecutor(func(o *ExecutorOptions) { o.Logger = opts.Logger }),
		routing:     routing,
		secondaries: secondaries,
		opts:        opts,
	}
}

// RoutingTable returns a snapshot of the effective intent→capability table.
func (o *Orchestrator) RoutingTable() map[string]core.Capability {
	out := make(map[string]core.Capability, len(o.routing))
	for k, v := range o.routing {
		out[k] = v
	}
	return out
}

// Route classifies the task input and selects the primary (and, with
// fan-out enabled, secondary) agents. Routing is deterministic: the same
// intent kind against a fixed registry always selects the same primary.
func (o *Orchestrator) Route(ctx context.Context, task *core.TaskContext) error {
	if err := o.opts.Callbacks.Execute(ctx, CallbackBeforeClassify, &CallbackContext{Type: CallbackBeforeClassify, Task: task}); err != nil {
		return err
	}

	var history []core.Message
	if o.opts.Memory != nil && task.SessionID != "" {
		if h, err := o.opts.Memory.History(task.SessionID); err == nil {
			history = h
		}
	}

	intent := o.classifier.Classify(ctx, task.UserInput, history)
	task.Intent = &intent

	if err := o.opts.Callbacks.Execute(ctx, CallbackAfterClassify, &CallbackContext{Type: CallbackAfterClassify, Task: task}); err != nil {
		return err
	}

	capability := o.capabilityFor(intent)
	agents := o.registry.Resolve(capability)
	if len(agents) == 0 {
		err := &core.NoAgentAvailableError{Capability: capability}
		o.notifyError(ctx, task, err)
		return err
	}
	task.PrimaryAgent = agents[0].Name()

	if o.opts.EnableFanOut {
		task.SecondaryAgents = o.selectSecondaries(intent.Kind, task.PrimaryAgent)
	}

	o.opts.Logger.Debug("task routed",
		"task_id", task.ID,
		"intent_kind", intent.Kind,
		"confidence", intent.Confidence,
		"capability", capability,
		"primary_agent", task.PrimaryAgent,
		"secondary_agents", len(task.SecondaryAgents),
	)
	return nil
}

// capabilityFor maps an intent onto its default capability. Unknown kinds
// and low-confidence classifications fall back to general conversation.
func (o *Orchestrator) capabilityFor(intent core.Intent) core.Capability {
	if intent.Confidence < o.opts.ConfidenceThreshold {
		return core.CapabilityGeneralConversation
	}
	if capability, ok := o.routing[intent.Kind]; ok {
		return capability
	}
	return core.CapabilityGeneralConversation
}

// selectSecondaries resolves the fan-out capabilities for the intent kind,
// skipping the primary and deduplicating agents.
func (o *Orchestrator) selectSecondaries(kind, primary string) []string {
	var out []string
	seen := map[string]bool{primary: true}
	for _, capability := range o.secondaries[kind] {
		for _, a := range o.registry.Resolve(capability) {
			if !seen[a.Name()] {
				seen[a.Name()] = true
				out = append(out, a.Name())
			}
			break // first registered agent per capability
		}
	}
	return out
}

// Dispatch executes the primary agent and, when fan-out applies, the
// secondary agents concurrently. Every execution is contained: failures are
// recorded in the task's results and never abort the run.
func (o *Orchestrator) Dispatch(ctx context.Context, task *core.TaskContext) error {
	primary, ok := o.registry.Get(task.PrimaryAgent)
	if !ok {
		return fmt.Errorf("primary agent %q vanished from registry", task.PrimaryAgent)
	}

	if err := o.runCallbacksAround(ctx, task, primary.Name(), func() core.AgentResult {
		return o.executor.Execute(ctx, primary, task)
	}); err != nil {
		return err
	}

	res, _ := task.Result(task.PrimaryAgent)
	if !res.Success || len(task.SecondaryAgents) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxParallelSecondaries)
	for _, name := range task.SecondaryAgents {
		agent, ok := o.registry.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			task.AddResult(o.executor.Execute(gctx, agent, task))
			return nil
		})
	}
	return g.Wait()
}

// runCallbacksAround wraps one agent execution with dispatch callbacks and
// records its result.
func (o *Orchestrator) runCallbacksAround(ctx context.Context, task *core.TaskContext, agentName string, run func() core.AgentResult) error {
	if err := o.opts.Callbacks.Execute(ctx, CallbackBeforeDispatch, &CallbackContext{Type: CallbackBeforeDispatch, Task: task, AgentName: agentName}); err != nil {
		return err
	}
	result := run()
	task.AddResult(result)
	return o.opts.Callbacks.Execute(ctx, CallbackAfterDispatch, &CallbackContext{Type: CallbackAfterDispatch, Task: task, AgentName: agentName, Result: &result})
}

// Synthesize merges the task's results into one OrchestrationResult. With a
// single result the payload is returned verbatim; multiple successful
// payloads are merged through the completion service, degrading to the
// primary payload when the merge fails. Synthesis is never a single point
// of total failure when any agent succeeded.
func (o *Orchestrator) Synthesize(ctx context.Context, task *core.TaskContext) (*core.OrchestrationResult, error) {
	results := task.Results()

	primaryRes, hasPrimary := results[task.PrimaryAgent]
	successes := make([]core.AgentResult, 0, len(results))
	if hasPrimary && primaryRes.Success {
		successes = append(successes, primaryRes)
	}
	for _, name := range task.AgentsUsed() {
		if name == task.PrimaryAgent {
			continue
		}
		if r := results[name]; r.Success {
			successes = append(successes, r)
		}
	}

	if len(successes) == 0 {
		detail := "no agent produced a result"
		if hasPrimary && primaryRes.Error != "" {
			detail = primaryRes.Error
		}
		err := &core.OrchestrationError{Stage: "synthesize", Message: "all dispatched agents failed", Err: errors.New(detail)}
		o.notifyError(ctx, task, err)
		return &core.OrchestrationResult{
			TaskID:    task.ID,
			Success:   false,
			Error:     err.Error(),
			AgentUsed: task.PrimaryAgent,
			Intent:    task.Intent,
		}, err
	}

	payload := successes[0].Payload
	if len(successes) > 1 {
		payload = o.mergePayloads(ctx, task, successes)
	}

	return &core.OrchestrationResult{
		TaskID:    task.ID,
		Success:   true,
		Payload:   payload,
		AgentUsed: successes[0].AgentName,
		Intent:    task.Intent,
	}, nil
}

// mergePayloads asks the completion service for a natural-language merge of
// several agent payloads, falling back to the first successful payload when
// the service is absent or the merge call fails.
func (o *Orchestrator) mergePayloads(ctx context.Context, task *core.TaskContext, successes []core.AgentResult) any {
	if o.opts.Completion == nil {
		return successes[0].Payload
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Combine the following specialist outputs into one coherent answer to the request %q.\n\n", task.UserInput)
	for _, r := range successes {
		fmt.Fprintf(&b, "## %s\n%s\n\n", r.AgentName, payloadText(r.Payload))
	}

	merged, err := o.opts.Completion.Complete(ctx, completion.Request{
		Prompt: b.String(),
		System: "You merge specialist agent outputs for a project-management assistant. Preserve every concrete figure and recommendation.",
	})
	if err != nil {
		o.opts.Logger.Warn("synthesis merge failed, degrading to primary payload", "task_id", task.ID, "error", err)
		return successes[0].Payload
	}
	return merged
}

// SubmitTask is the composed entry point: it creates the task context, runs
// the pipeline and records the successful exchange in conversation memory.
// A run in which every agent failed returns both a structured failed result
// and the typed *core.OrchestrationError.
func (o *Orchestrator) SubmitTask(ctx context.Context, userInput, sessionID string) (*core.OrchestrationResult, error) {
	task := core.NewTaskContext(uuid.NewString(), userInput, sessionID)

	if err := o.Route(ctx, task); err != nil {
		return nil, err
	}
	if err := o.Dispatch(ctx, task); err != nil {
		return nil, err
	}

	result, err := o.Synthesize(ctx, task)
	if err != nil {
		return result, err
	}

	// A cancelled caller gets no partial conversation state.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if o.opts.Memory != nil && sessionID != "" {
		if _, err := o.opts.Memory.Append(sessionID, core.RoleUser, userInput); err != nil {
			return nil, fmt.Errorf("record user message: %w", err)
		}
		if _, err := o.opts.Memory.Append(sessionID, core.RoleAgent, payloadText(result.Payload)); err != nil {
			return nil, fmt.Errorf("record agent message: %w", err)
		}
	}

	return result, nil
}

func (o *Orchestrator) notifyError(ctx context.Context, task *core.TaskContext, err error) {
	_ = o.opts.Callbacks.Execute(ctx, CallbackOnError, &CallbackContext{Type: CallbackOnError, Task: task, Err: err})
}

// payloadText renders an agent payload for conversation history and merge
// prompts.
func payloadText(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
