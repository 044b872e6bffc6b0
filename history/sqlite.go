package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nextnine/agenthub/core"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_active DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			metadata TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage records one turn. The session upsert and the message insert
// share one transaction so a crash never leaves a turn without its session.
func (s *SQLiteStore) SaveMessage(ctx context.Context, sessionID, agentID, role, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	var owner string
	err = tx.QueryRowContext(ctx,
		`SELECT agent_id FROM sessions WHERE session_id = ?`, sessionID).Scan(&owner)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (session_id, agent_id, created_at, last_active) VALUES (?, ?, ?, ?)`,
			sessionID, agentID, now, now); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lookup session: %w", err)
	case owner != agentID:
		return fmt.Errorf("%w: session %s is owned by %s", ErrSessionAgentMismatch, sessionID, owner)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET last_active = ? WHERE session_id = ?`, now, sessionID); err != nil {
			return fmt.Errorf("touch session: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (session_id, agent_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		sessionID, agentID, role, content, now); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return tx.Commit()
}

// LoadHistory returns the most recent turns oldest first. The window is taken
// from the tail of the session (DESC with insertion-order tiebreak) and then
// reversed, so same-timestamp turns keep their write order.
func (s *SQLiteStore) LoadHistory(ctx context.Context, sessionID string, limit int) ([]core.ConversationTurn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, timestamp FROM conversations
		 WHERE session_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var turns []core.ConversationTurn
	for rows.Next() {
		var turn core.ConversationTurn
		if err := rows.Scan(&turn.Role, &turn.Content, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// GetSessionInfo retrieves a session record by ID.
func (s *SQLiteStore) GetSessionInfo(ctx context.Context, sessionID string) (*core.Session, error) {
	var session core.Session
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, agent_id, created_at, last_active, metadata FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.ID, &session.AgentID, &session.CreatedAt, &session.LastActive, &metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &session.Metadata); err != nil {
			return nil, fmt.Errorf("decode session metadata: %w", err)
		}
	}
	return &session, nil
}

// ListSessions lists sessions most recently active first, optionally
// restricted to one owning agent.
func (s *SQLiteStore) ListSessions(ctx context.Context, agentID string) ([]core.Session, error) {
	query := `SELECT session_id, agent_id, created_at, last_active, metadata FROM sessions`
	args := []any{}
	if agentID != "" {
		query += ` WHERE agent_id = ?`
		args = append(args, agentID)
	}
	query += ` ORDER BY last_active DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var session core.Session
		var metadata sql.NullString
		if err := rows.Scan(&session.ID, &session.AgentID, &session.CreatedAt, &session.LastActive, &metadata); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &session.Metadata); err != nil {
				return nil, fmt.Errorf("decode session metadata: %w", err)
			}
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
