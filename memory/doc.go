// Package memory provides the bounded, per-session conversation store used
// by the orchestrator and the evaluation runner. The in-memory
// implementation enforces a hard message bound with FIFO eviction, assigns
// strictly increasing per-session order values, and serializes writers per
// session so concurrent sessions never block each other.
package memory
