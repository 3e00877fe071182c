package agent

import "github.com/hupe1980/agentcrew/core"

// BaseAgent carries the identity and capability metadata shared by every
// agent implementation. Embed it and implement Execute to build an agent.
type BaseAgent struct {
	name         string
	description  string
	capabilities []core.Capability
}

// NewBaseAgent constructs the shared agent metadata. The capability slice is
// copied so later caller mutation cannot change what the agent advertises.
func NewBaseAgent(name, description string, capabilities []core.Capability) *BaseAgent {
	caps := make([]core.Capability, len(capabilities))
	copy(caps, capabilities)
	return &BaseAgent{name: name, description: description, capabilities: caps}
}

// Name returns the agent's unique name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent's human-readable description.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns a copy of the agent's advertised capabilities.
func (b *BaseAgent) Capabilities() []core.Capability {
	caps := make([]core.Capability, len(b.capabilities))
	copy(caps, b.capabilities)
	return caps
}
