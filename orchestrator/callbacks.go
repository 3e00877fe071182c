package orchestrator

import (
	"context"

	"github.com/hupe1980/agentcrew/core"
)

// CallbackType defines the lifecycle points where callbacks run. Callbacks
// hook into the orchestration pipeline without modifying core logic; they
// execute synchronously and a returned error terminates the run.
type CallbackType string

const (
	// CallbackBeforeClassify is triggered before intent classification.
	CallbackBeforeClassify CallbackType = "before_classify"

	// CallbackAfterClassify is triggered after intent classification with
	// the resolved intent attached.
	CallbackAfterClassify CallbackType = "after_classify"

	// CallbackBeforeDispatch is triggered before each agent execution.
	// Use for validation, auditing or rate limiting.
	CallbackBeforeDispatch CallbackType = "before_dispatch"

	// CallbackAfterDispatch is triggered after each agent execution with
	// the recorded result attached.
	CallbackAfterDispatch CallbackType = "after_dispatch"

	// CallbackOnError is triggered when the pipeline terminates with a
	// typed error. Use for alerting or metrics; the error itself is not
	// altered by callbacks.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext carries the pipeline state visible to a callback.
type CallbackContext struct {
	Type      CallbackType
	Task      *core.TaskContext
	AgentName string
	Result    *core.AgentResult
	Err       error
}

// Callback is a synchronous lifecycle hook.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic. Returning an error terminates
	// the orchestration run for before_* hooks.
	Execute(ctx context.Context, cc *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cc *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(t CallbackType, fn func(ctx context.Context, cc *CallbackContext) error) *FunctionCallback {
	return &FunctionCallback{callbackType: t, fn: fn}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, cc *CallbackContext) error {
	return c.fn(ctx, cc)
}

// CallbackManager routes lifecycle events to registered callbacks in
// registration order. Registration is expected to complete before the first
// dispatch; execution is then safe for concurrent use.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
}

// Register adds a callback for its declared type.
func (cm *CallbackManager) Register(cb Callback) {
	cm.callbacks[cb.Type()] = append(cm.callbacks[cb.Type()], cb)
}

// Execute runs all callbacks registered for the type, stopping at the first
// error.
func (cm *CallbackManager) Execute(ctx context.Context, t CallbackType, cc *CallbackContext) error {
	for _, cb := range cm.callbacks[t] {
		if err := cb.Execute(ctx, cc); err != nil {
			return err
		}
	}
	return nil
}
