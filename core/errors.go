package core

import "fmt"

// DuplicateAgentError is returned by the registry when an agent name is
// registered twice. Agent names must be unique.
type DuplicateAgentError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q is already registered", e.Name)
}

// NoAgentAvailableError is returned when routing resolves a capability that
// no registered agent advertises. This is a configuration defect, not a
// transient condition, and is never retried.
type NoAgentAvailableError struct {
	Capability Capability
}

// Error implements the error interface.
func (e *NoAgentAvailableError) Error() string {
	return fmt.Sprintf("no agent available for capability %q", e.Capability)
}

// SessionNotFoundError is returned by memory and evaluation lookups for an
// unknown session id. Callers decide whether to auto-create.
type SessionNotFoundError struct {
	SessionID string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.SessionID)
}

// OrchestrationError is the typed terminal error of an orchestration run:
// every agent that ran failed, or routing could not produce a dispatchable
// agent. Stage names the pipeline step that produced it.
type OrchestrationError struct {
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *OrchestrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestration failed at %s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("orchestration failed at %s: %s", e.Stage, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *OrchestrationError) Unwrap() error { return e.Err }
