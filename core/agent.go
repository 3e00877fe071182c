package core

import "context"

// Agent is the uniform execution interface every specialist implements.
//
// Execute processes the task and returns its result. Implementations should
// respect context cancellation; the completion call they issue is the only
// expected blocking point. Returning an error (or panicking) is contained by
// the executor and converted into a failed AgentResult, so a single agent's
// failure never aborts the orchestration run.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []Capability
	Execute(ctx context.Context, task *TaskContext) (AgentResult, error)
}

// AgentDescriptor is the registry's immutable view of a registered agent:
// a unique name plus the set of capabilities it advertises.
type AgentDescriptor struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// DescribeAgent builds a descriptor snapshot from an agent. The capability
// slice is copied so registry reads cannot be mutated through it.
func DescribeAgent(a Agent) AgentDescriptor {
	caps := a.Capabilities()
	cp := make([]Capability, len(caps))
	copy(cp, caps)
	return AgentDescriptor{Name: a.Name(), Description: a.Description(), Capabilities: cp}
}
