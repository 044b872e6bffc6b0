// Package history provides durable conversation storage. Every user turn and
// agent reply is recorded per session so context survives process restarts.
package history

import (
	"context"
	"errors"

	"github.com/nextnine/agenthub/core"
)

// ErrSessionAgentMismatch is returned when a write names a session that
// already belongs to a different agent. Sessions never rebind.
var ErrSessionAgentMismatch = errors.New("session belongs to a different agent")

// Store persists conversation turns and session records.
type Store interface {
	// SaveMessage records one conversation turn. The session row is created
	// on first use and its last-active timestamp advances on every write;
	// the message insert and the session upsert commit together.
	SaveMessage(ctx context.Context, sessionID, agentID, role, content string) error

	// LoadHistory returns up to limit of the most recent turns for a
	// session, oldest first. A limit <= 0 applies the default window.
	LoadHistory(ctx context.Context, sessionID string, limit int) ([]core.ConversationTurn, error)

	// GetSessionInfo returns the session record, or nil when the session id
	// is unknown.
	GetSessionInfo(ctx context.Context, sessionID string) (*core.Session, error)

	// ListSessions returns sessions, most recently active first. A non-empty
	// agentID restricts the listing to that agent's sessions.
	ListSessions(ctx context.Context, agentID string) ([]core.Session, error)

	Close() error
}

// DefaultHistoryLimit is the load window applied when callers pass no limit.
const DefaultHistoryLimit = 50
