package storage

import (
	"context"
	"sync"

	"github.com/richinex/deskflow/model"
)

// MemoryStore implements ConversationStore with an in-process map.
// State is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Conversation
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Conversation),
	}
}

// Save stores a conversation for a session.
func (s *MemoryStore) Save(ctx context.Context, sessionID string, conv *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clone so later mutations by the caller don't reach stored state.
	s.sessions[sessionID] = conv.Clone()
	return nil
}

// Load returns the conversation for a session, or an empty one when the
// session is unknown.
func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[sessionID]
	if !ok {
		return model.NewConversation(0), nil
	}
	return conv.Clone(), nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// ListSessions lists all session IDs.
func (s *MemoryStore) ListSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.sessions))
	for sessionID := range s.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions, nil
}

// Exists reports whether a session exists.
func (s *MemoryStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok, nil
}

var _ ConversationStore = (*MemoryStore)(nil)
