package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextnine/agenthub/core"
)

// Both implementations must satisfy the same contract; every test below runs
// against each.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestSaveMessageCreatesSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := store.SaveMessage(ctx, "session-1", "finance_agent", core.RoleUser, "check the budget")
			require.NoError(t, err)

			session, err := store.GetSessionInfo(ctx, "session-1")
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, "session-1", session.ID)
			assert.Equal(t, "finance_agent", session.AgentID)
			assert.False(t, session.CreatedAt.IsZero())
			assert.False(t, session.LastActive.IsZero())
		})
	}
}

func TestSaveMessageRejectsAgentRebind(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.SaveMessage(ctx, "session-1", "finance_agent", core.RoleUser, "hello"))

			err := store.SaveMessage(ctx, "session-1", "schedule_agent", core.RoleUser, "hello")
			assert.ErrorIs(t, err, ErrSessionAgentMismatch)

			// The failed write must not have been recorded.
			turns, err := store.LoadHistory(ctx, "session-1", 0)
			require.NoError(t, err)
			assert.Len(t, turns, 1)
		})
	}
}

func TestLoadHistoryChronologicalWindow(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 6; i++ {
				role := core.RoleUser
				if i%2 == 1 {
					role = core.RoleAgent
				}
				require.NoError(t, store.SaveMessage(ctx, "session-1", "finance_agent", role, fmt.Sprintf("turn %d", i)))
			}

			turns, err := store.LoadHistory(ctx, "session-1", 4)
			require.NoError(t, err)
			require.Len(t, turns, 4)

			// Most recent 4, returned oldest first.
			assert.Equal(t, "turn 2", turns[0].Content)
			assert.Equal(t, "turn 5", turns[3].Content)
			assert.Equal(t, core.RoleUser, turns[0].Role)
			assert.Equal(t, core.RoleAgent, turns[3].Role)
		})
	}
}

func TestLoadHistoryUnknownSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			turns, err := store.LoadHistory(context.Background(), "no-such-session", 10)
			require.NoError(t, err)
			assert.Empty(t, turns)
		})
	}
}

func TestGetSessionInfoUnknown(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			session, err := store.GetSessionInfo(context.Background(), "no-such-session")
			require.NoError(t, err)
			assert.Nil(t, session)
		})
	}
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.SaveMessage(ctx, "session-a", "finance_agent", core.RoleUser, "first"))
			require.NoError(t, store.SaveMessage(ctx, "session-b", "schedule_agent", core.RoleUser, "second"))
			// session-a becomes the most recently active again.
			require.NoError(t, store.SaveMessage(ctx, "session-a", "finance_agent", core.RoleAgent, "reply"))

			sessions, err := store.ListSessions(ctx, "")
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, "session-a", sessions[0].ID)
			assert.Equal(t, "session-b", sessions[1].ID)
			assert.True(t, !sessions[0].LastActive.Before(sessions[1].LastActive))
		})
	}
}

func TestListSessionsFiltersByAgent(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.SaveMessage(ctx, "session-a", "finance_agent", core.RoleUser, "a"))
			require.NoError(t, store.SaveMessage(ctx, "session-b", "schedule_agent", core.RoleUser, "b"))
			require.NoError(t, store.SaveMessage(ctx, "session-c", "finance_agent", core.RoleUser, "c"))

			sessions, err := store.ListSessions(ctx, "finance_agent")
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			for _, session := range sessions {
				assert.Equal(t, "finance_agent", session.AgentID)
			}
		})
	}
}
