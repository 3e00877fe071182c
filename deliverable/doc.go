// Package deliverable stores documents produced by specialist agents
// (charter markdown, risk registers, cost breakdowns) keyed by session and
// name. InMemoryStore suits tests and prototypes; FileStore writes the
// documents under a configurable directory so they survive the process.
package deliverable
