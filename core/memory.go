package core

// ConversationMemory is the bounded, per-session ordered message store.
//
// Append inserts at the tail with a strictly increasing order and evicts from
// the head once the session exceeds its bound; it auto-creates the session on
// first use. History returns a snapshot copy so callers cannot mutate stored
// state. Operations on different sessions never block each other; operations
// on the same session are serialized to preserve order monotonicity.
type ConversationMemory interface {
	// Append stores a message at the tail of the session and returns the
	// stored message including its assigned order.
	Append(sessionID string, role Role, content string) (Message, error)

	// History returns an ordered snapshot of the session's messages or a
	// *SessionNotFoundError for an unknown session.
	History(sessionID string) ([]Message, error)

	// Clear removes all history for the session or returns a
	// *SessionNotFoundError if it does not exist.
	Clear(sessionID string) error

	// Sessions returns the ids of all sessions currently held.
	Sessions() []string
}
