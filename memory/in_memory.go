package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/logging"
)

// DefaultMaxMessages bounds a session to 20 messages (10 exchanges).
const DefaultMaxMessages = 20

// InMemoryOptions configures the in-memory conversation store.
type InMemoryOptions struct {
	// MaxMessages is the per-session bound N. Appends beyond it evict from
	// the head until the session holds exactly N messages.
	MaxMessages int

	// Persistence, when set, receives a write-through copy of every append
	// and clear. Write-through failures are logged, never surfaced: the
	// in-memory state remains the source of truth for the running process.
	Persistence core.PersistenceStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// session holds one session's messages behind its own lock so operations on
// different sessions never contend.
type session struct {
	mu          sync.Mutex
	messages    []core.Message
	nextOrder   int
	lastUpdated time.Time
}

// InMemoryStore is the bounded ConversationMemory implementation. The outer
// map lock is held only long enough to find or create the session; message
// mutation happens under the per-session lock.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	opts     InMemoryOptions
}

// NewInMemoryStore constructs an empty bounded conversation store.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{
		MaxMessages: DefaultMaxMessages,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultMaxMessages
	}

	return &InMemoryStore{sessions: make(map[string]*session), opts: opts}
}

// Append stores a message at the session tail with a strictly increasing
// order, creating the session on first use and evicting from the head once
// the bound is exceeded.
func (s *InMemoryStore) Append(sessionID string, role core.Role, content string) (core.Message, error) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	msg := core.Message{
		Role:      role,
		Content:   content,
		Order:     sess.nextOrder,
		Timestamp: time.Now(),
	}
	sess.nextOrder++
	sess.messages = append(sess.messages, msg)
	if excess := len(sess.messages) - s.opts.MaxMessages; excess > 0 {
		sess.messages = append(sess.messages[:0:0], sess.messages[excess:]...)
	}
	sess.lastUpdated = msg.Timestamp
	sess.mu.Unlock()

	s.persistMessage(sessionID, msg)
	return msg, nil
}

// History returns an ordered snapshot of the session's messages. Callers may
// mutate the returned slice freely.
func (s *InMemoryStore) History(sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, &core.SessionNotFoundError{SessionID: sessionID}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]core.Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// Clear removes all history for the session.
func (s *InMemoryStore) Clear(sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return &core.SessionNotFoundError{SessionID: sessionID}
	}

	if s.opts.Persistence != nil {
		if err := s.opts.Persistence.DeleteSession(context.Background(), sessionID); err != nil {
			s.opts.Logger.Warn("conversation write-through delete failed", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// Sessions returns the ids of all sessions currently held.
func (s *InMemoryStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Restore loads a session's durable history into memory, applying the bound
// to the loaded tail. It is a no-op without a persistence store and
// overwrites any in-memory state for the session.
func (s *InMemoryStore) Restore(ctx context.Context, sessionID string) error {
	if s.opts.Persistence == nil {
		return nil
	}
	msgs, err := s.opts.Persistence.LoadMessages(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(msgs) > s.opts.MaxMessages {
		msgs = msgs[len(msgs)-s.opts.MaxMessages:]
	}

	sess := s.getOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.messages = append(sess.messages[:0:0], msgs...)
	sess.nextOrder = 0
	if n := len(msgs); n > 0 {
		sess.nextOrder = msgs[n-1].Order + 1
	}
	sess.lastUpdated = time.Now()
	return nil
}

// getOrCreate returns the session, allocating it under the write lock on
// first use.
func (s *InMemoryStore) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}

// persistMessage writes through to the persistence store, best effort.
func (s *InMemoryStore) persistMessage(sessionID string, msg core.Message) {
	if s.opts.Persistence == nil {
		return
	}
	if err := s.opts.Persistence.SaveMessage(context.Background(), sessionID, msg); err != nil {
		s.opts.Logger.Warn("conversation write-through save failed", "session_id", sessionID, "error", err)
	}
}

// compile-time interface check
var _ core.ConversationMemory = (*InMemoryStore)(nil)
