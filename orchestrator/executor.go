package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
)

// ExecutorOptions configures the agent executor.
type ExecutorOptions struct {
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Executor invokes one agent and contains its failure. Any error or panic
// raised by the agent is converted to a failed AgentResult so a single
// agent's failure never aborts the orchestration run. The executor performs
// no retries; retries, if any, are the agent's own responsibility.
type Executor struct {
	logger logging.Logger
}

// NewExecutor constructs an executor.
func NewExecutor(optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{logger: opts.Logger}
}

// Execute runs the agent against the task and always returns a result: a
// failure is recorded in the result, never propagated as an error or panic.
func (e *Executor) Execute(ctx context.Context, agent core.Agent, task *core.TaskContext) core.AgentResult {
	start := time.Now()

	var (
		result core.AgentResult
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("agent panic: %v", r)
				e.logger.Error("agent panicked", "agent", agent.Name(), "task_id", task.ID, "recover", r)
			}
		}()
		result, err = agent.Execute(ctx, task)
	}()

	if err != nil {
		result = core.AgentResult{AgentName: agent.Name(), Success: false, Error: err.Error()}
	}
	if result.AgentName == "" {
		result.AgentName = agent.Name()
	}

	e.logger.Info("agent execution completed",
		"agent", agent.Name(),
		"task_id", task.ID,
		"success", result.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}
