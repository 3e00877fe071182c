// Package core provides the foundational domain types and interfaces used by
// AgentCrew. It defines the core abstractions for:
//
//   - Agents (capability-tagged units of work) and their descriptors
//   - TaskContext (per-request orchestration state, never shared)
//   - Intent (classified purpose of a user request with confidence)
//   - AgentResult / OrchestrationResult (per-agent and per-request outcomes)
//   - Messages and the bounded ConversationMemory contract
//   - Pluggable stores for durable sessions and generated deliverables
//
// The package intentionally keeps implementation concerns (persistence,
// orchestration, concrete agents) out of scope, exposing small interfaces to
// enable custom backends and extensions. All exported identifiers include
// concise documentation to aid discoverability and external consumption.
package core
