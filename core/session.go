package core

import "time"

// Conversation roles persisted in the history store.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ConversationTurn is one persisted message of a session. Turns are ordered
// by timestamp with insertion order breaking ties.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a durable, agent-scoped conversation thread. A session binds to
// its owning agent on first write and never rebinds.
type Session struct {
	ID         string            `json:"session_id"`
	AgentID    string            `json:"agent_id"`
	CreatedAt  time.Time         `json:"created_at"`
	LastActive time.Time         `json:"last_active"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
