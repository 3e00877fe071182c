// Package evaluation implements the turn-bounded competency assessment loop:
// an explicit finite state machine (ask question, await response, analyze,
// determine level) driven by a Runner that dispatches question generation and
// response analysis through the orchestrator. The loop is hard-bounded by
// MaxQuestions, so it terminates regardless of what the analysis step says.
package evaluation
