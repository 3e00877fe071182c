// Package orchestrator composes the intent classifier, capability registry
// and agent executor into the route → dispatch → synthesize pipeline. The
// orchestrator owns no per-user state: all per-call state lives in the
// core.TaskContext created for that call, so instances are safe for
// concurrent use across sessions.
package orchestrator
