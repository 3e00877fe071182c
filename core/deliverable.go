package core

// DeliverableStore persists documents produced by specialist agents (charter
// markdown, risk registers, cost breakdowns) keyed by session and name.
// Implementations copy data on save and retrieval so callers cannot mutate
// stored buffers.
type DeliverableStore interface {
	// Save stores (or overwrites) the deliverable bytes for the session.
	Save(sessionID, name string, data []byte) error

	// Get returns a copy of the stored bytes or deliverable.ErrNotFound.
	Get(sessionID, name string) ([]byte, error)

	// List returns the deliverable names stored for the session.
	List(sessionID string) ([]string, error)

	// Delete removes the deliverable if present.
	Delete(sessionID, name string) error
}
