// Package agentcrew is the top-level facade over the orchestration core: a
// capability-tagged agent registry, intent classification with a heuristic
// fallback, contained agent execution, bounded conversation memory and the
// turn-bounded competency evaluation loop. Construct a Crew around a
// completion.Service, register agents, and submit tasks.
package agentcrew

import (
	"context"

	"github.com/hupe1980/agentcrew/agent"
	"github.com/hupe1980/agentcrew/classifier"
	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/deliverable"
	"github.com/hupe1980/agentcrew/evaluation"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/memory"
	"github.com/hupe1980/agentcrew/orchestrator"
	"github.com/hupe1980/agentcrew/registry"
)

// Options configures a Crew.
type Options struct {
	// Memory overrides the default in-memory conversation store.
	Memory core.ConversationMemory

	// Deliverables overrides the default in-memory deliverable store.
	Deliverables core.DeliverableStore

	// Persistence, when set, backs the default conversation memory so
	// history survives restarts. Ignored when Memory is set explicitly.
	Persistence core.PersistenceStore

	// Classifier overrides the default service classifier.
	Classifier orchestrator.Classifier

	// Callbacks receives orchestration lifecycle events.
	Callbacks *orchestrator.CallbackManager

	// MaxMessages bounds per-session conversation history.
	MaxMessages int

	// MaxQuestions bounds an evaluation run.
	MaxQuestions int

	// ConfidenceThreshold routes low-confidence intents to general
	// conversation.
	ConfidenceThreshold float64

	// EnableFanOut dispatches secondary agents after a successful primary.
	EnableFanOut bool

	Logger logging.Logger
}

// Crew wires the orchestration components together behind one handle. All
// references are immutable after construction; per-request state lives in
// the task contexts and evaluation runs the Crew hands out.
type Crew struct {
	service      completion.Service
	registry     *registry.CapabilityRegistry
	orchestrator *orchestrator.Orchestrator
	runner       *evaluation.Runner
	memory       core.ConversationMemory
	deliverables core.DeliverableStore
	opts         Options
}

// New constructs a Crew over the given completion service. With no options
// it uses in-memory conversation and deliverable stores, the service-backed
// classifier with its heuristic fallback, and single-agent dispatch.
func New(service completion.Service, optFns ...func(o *Options)) *Crew {
	opts := Options{
		MaxMessages:         memory.DefaultMaxMessages,
		MaxQuestions:        7,
		ConfidenceThreshold: 0.3,
		Logger:              logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	mem := opts.Memory
	if mem == nil {
		mem = memory.NewInMemoryStore(func(o *memory.InMemoryOptions) {
			o.MaxMessages = opts.MaxMessages
			o.Persistence = opts.Persistence
			o.Logger = opts.Logger
		})
	}

	deliverables := opts.Deliverables
	if deliverables == nil {
		deliverables = deliverable.NewInMemoryStore()
	}

	c := opts.Classifier
	if c == nil {
		c = classifier.NewServiceClassifier(service, func(o *classifier.ServiceClassifierOptions) {
			o.Logger = opts.Logger
		})
	}

	reg := registry.New()

	orch := orchestrator.New(c, reg, func(o *orchestrator.Options) {
		o.Memory = mem
		o.Completion = service
		o.ConfidenceThreshold = opts.ConfidenceThreshold
		o.EnableFanOut = opts.EnableFanOut
		o.Logger = opts.Logger
		if opts.Callbacks != nil {
			o.Callbacks = opts.Callbacks
		}
	})

	runner := evaluation.NewRunner(orch, func(o *evaluation.RunnerOptions) {
		o.MaxQuestions = opts.MaxQuestions
		o.Memory = mem
		o.Logger = opts.Logger
	})

	return &Crew{
		service:      service,
		registry:     reg,
		orchestrator: orch,
		runner:       runner,
		memory:       mem,
		deliverables: deliverables,
		opts:         opts,
	}
}

// RegisterAgent adds an agent to the crew's registry. Names must be unique;
// a duplicate returns a typed *core.DuplicateAgentError.
func (c *Crew) RegisterAgent(a core.Agent) error {
	return c.registry.Register(a)
}

// RegisterDefaults registers the four built-in specialists (charter, risk,
// cost, general), wired to the crew's memory and deliverable stores.
func (c *Crew) RegisterDefaults() error {
	withStores := func(o *agent.CompletionAgentOptions) {
		o.Memory = c.memory
		o.Deliverables = c.deliverables
		o.Logger = c.opts.Logger
	}

	agents := []core.Agent{
		agent.NewCharterAgent(c.service, withStores),
		agent.NewRiskAgent(c.service, withStores),
		agent.NewCostAgent(c.service, withStores),
		agent.NewGeneralAgent(c.service, withStores),
	}
	for _, a := range agents {
		if err := c.registry.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// SubmitTask classifies, routes, dispatches and synthesizes one user
// request, recording the exchange in conversation memory on success.
func (c *Crew) SubmitTask(ctx context.Context, userInput, sessionID string) (*core.OrchestrationResult, error) {
	return c.orchestrator.SubmitTask(ctx, userInput, sessionID)
}

// StartEvaluation begins a competency evaluation for the session and returns
// the run handle plus the first question.
func (c *Crew) StartEvaluation(ctx context.Context, sessionID string) (*evaluation.Run, string, error) {
	return c.runner.Start(ctx, sessionID)
}

// AdvanceEvaluation delivers the user's response to a running evaluation and
// returns either the next question or the terminal report.
func (c *Crew) AdvanceEvaluation(ctx context.Context, run *evaluation.Run, response string) (evaluation.Step, error) {
	return c.runner.Advance(ctx, run, response)
}

// History returns an ordered snapshot of the session's conversation.
func (c *Crew) History(sessionID string) ([]core.Message, error) {
	return c.memory.History(sessionID)
}

// ClearHistory removes all conversation history for the session.
func (c *Crew) ClearHistory(sessionID string) error {
	return c.memory.Clear(sessionID)
}

// RestoreSession reloads a session's history from the persistence store, if
// the crew's memory supports it. Without persistence it is a no-op.
func (c *Crew) RestoreSession(ctx context.Context, sessionID string) error {
	if m, ok := c.memory.(*memory.InMemoryStore); ok {
		return m.Restore(ctx, sessionID)
	}
	return nil
}

// Agents returns descriptors for every registered agent.
func (c *Crew) Agents() []core.AgentDescriptor {
	return c.registry.Descriptors()
}

// RoutingTable returns a snapshot of the effective intent→capability table.
func (c *Crew) RoutingTable() map[string]core.Capability {
	return c.orchestrator.RoutingTable()
}

// Deliverables returns the crew's deliverable store.
func (c *Crew) Deliverables() core.DeliverableStore {
	return c.deliverables
}
