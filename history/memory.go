package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nextnine/agenthub/core"
)

// MemoryStore is an in-process Store used by tests and ephemeral deployments.
// It honors the same session-binding and ordering semantics as SQLiteStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	turns    map[string][]core.ConversationTurn
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*core.Session),
		turns:    make(map[string][]core.ConversationTurn),
	}
}

// SaveMessage records one turn, creating the session on first use.
func (s *MemoryStore) SaveMessage(_ context.Context, sessionID, agentID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &core.Session{
			ID:        sessionID,
			AgentID:   agentID,
			CreatedAt: now,
		}
		s.sessions[sessionID] = session
	} else if session.AgentID != agentID {
		return fmt.Errorf("%w: session %s is owned by %s", ErrSessionAgentMismatch, sessionID, session.AgentID)
	}
	session.LastActive = now

	s.turns[sessionID] = append(s.turns[sessionID], core.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	return nil
}

// LoadHistory returns the most recent turns oldest first.
func (s *MemoryStore) LoadHistory(_ context.Context, sessionID string, limit int) ([]core.ConversationTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[sessionID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]core.ConversationTurn, len(all))
	copy(out, all)
	return out, nil
}

// GetSessionInfo returns the session record or nil.
func (s *MemoryStore) GetSessionInfo(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

// ListSessions returns sessions most recently active first, optionally
// restricted to one owning agent.
func (s *MemoryStore) ListSessions(_ context.Context, agentID string) ([]core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]core.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if agentID != "" && session.AgentID != agentID {
			continue
		}
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActive.After(sessions[j].LastActive)
	})
	return sessions, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
