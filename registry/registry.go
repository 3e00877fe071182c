// Package registry maps capability tags to registered agents. Registration
// happens at startup; afterwards the registry is read-mostly and resolve
// calls never mutate state, so concurrent lookups are cheap and consistent.
package registry

import (
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// CapabilityRegistry holds the fixed set of agents and resolves capabilities
// against them in registration order. The first registered agent wins when a
// single agent is required, which keeps routing deterministic.
type CapabilityRegistry struct {
	mu     sync.RWMutex
	agents []core.Agent
	byName map[string]core.Agent
}

// New constructs an empty registry.
func New() *CapabilityRegistry {
	return &CapabilityRegistry{byName: make(map[string]core.Agent)}
}

// Register adds an agent. It returns a *core.DuplicateAgentError if an agent
// with the same name is already present.
func (r *CapabilityRegistry) Register(a core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name()]; exists {
		return &core.DuplicateAgentError{Name: a.Name()}
	}
	r.byName[a.Name()] = a
	r.agents = append(r.agents, a)
	return nil
}

// Resolve returns all agents advertising the capability, in registration
// order. An unknown capability yields an empty slice, never an error;
// callers must handle "no agent available" explicitly.
func (r *CapabilityRegistry) Resolve(capability core.Capability) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Agent
	for _, a := range r.agents {
		for _, c := range a.Capabilities() {
			if c == capability {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Get returns the agent registered under name.
func (r *CapabilityRegistry) Get(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Descriptors returns descriptor snapshots for all registered agents in
// registration order.
func (r *CapabilityRegistry) Descriptors() []core.AgentDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.AgentDescriptor, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, core.DescribeAgent(a))
	}
	return out
}

// Len returns the number of registered agents.
func (r *CapabilityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
