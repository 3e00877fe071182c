package core

import (
	"context"
	"time"
)

// SessionRecord is the durable metadata row for a conversation session.
type SessionRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Status       string    `json:"status"`
}

// PersistenceStore is consumed opaquely by the core for durable session
// storage; schema and storage engine are the implementation's concern.
// ConversationMemory implementations may write through to a store so that
// history survives process restarts.
type PersistenceStore interface {
	SaveSession(ctx context.Context, rec SessionRecord) error
	LoadSession(ctx context.Context, sessionID string) (SessionRecord, error)
	SaveMessage(ctx context.Context, sessionID string, msg Message) error
	LoadMessages(ctx context.Context, sessionID string) ([]Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}
