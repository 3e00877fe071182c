// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (messages, evaluation
// turns). These helpers are intentionally minimal and avoid adding
// third-party dependencies. They are not intended for production usage.
package testutil

import (
	"time"

	"github.com/hupe1980/agentcrew/core"
)

// MessageBuilder provides a fluent helper for constructing conversation
// messages in tests. Example:
//
//	msg := NewMessageBuilder().User("hello").Order(3).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	role      core.Role
	content   string
	order     int
	timestamp time.Time
}

// NewMessageBuilder creates a builder with default role user.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{role: core.RoleUser, timestamp: time.Now()}
}

// User sets the content and the user role (chainable).
func (b *MessageBuilder) User(content string) *MessageBuilder {
	b.role = core.RoleUser
	b.content = content
	return b
}

// Agent sets the content and the agent role (chainable).
func (b *MessageBuilder) Agent(content string) *MessageBuilder {
	b.role = core.RoleAgent
	b.content = content
	return b
}

// Order sets the message order (chainable).
func (b *MessageBuilder) Order(order int) *MessageBuilder {
	b.order = order
	return b
}

// At sets the message timestamp (chainable). Use mainly where determinism
// matters.
func (b *MessageBuilder) At(ts time.Time) *MessageBuilder {
	b.timestamp = ts
	return b
}

// Build assembles the message.
func (b *MessageBuilder) Build() core.Message {
	return core.Message{
		Role:      b.role,
		Content:   b.content,
		Order:     b.order,
		Timestamp: b.timestamp,
	}
}

// Conversation builds an alternating user/agent message sequence with
// consecutive orders, starting at order 0 with a user message.
func Conversation(contents ...string) []core.Message {
	out := make([]core.Message, len(contents))
	for i, content := range contents {
		b := NewMessageBuilder().Order(i)
		if i%2 == 0 {
			b.User(content)
		} else {
			b.Agent(content)
		}
		out[i] = b.Build()
	}
	return out
}
