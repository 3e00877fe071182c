// Package agent provides the built-in specialist agents and the building
// blocks for writing new ones. BaseAgent carries identity and capability
// metadata; CompletionAgent layers a completion-backed Execute on top with
// instruction resolution, conversation history windowing and optional
// deliverable persistence. The four domain constructors (charter, risk,
// cost, general) cover the default capability set.
package agent
