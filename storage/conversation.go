// Package storage persists conversations between turns.
//
// Backends are swappable behind ConversationStore: SQLite for durable
// sessions, an in-memory map for tests and ephemeral use.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/richinex/deskflow/model"
)

// ConversationStore persists conversation state keyed by session ID.
type ConversationStore interface {
	// Save stores the conversation for a session, replacing any prior state.
	Save(ctx context.Context, sessionID string, conv *model.Conversation) error

	// Load returns the conversation for a session. A missing session yields
	// an empty conversation, not an error; storage failures are errors.
	Load(ctx context.Context, sessionID string) (*model.Conversation, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists all session IDs.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists reports whether a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
