package workdocs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextnine/agenthub/core"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), "launch-q3", nil)
	require.NoError(t, err)
	return m
}

func TestLoadGlobalContextBootstrapsDefault(t *testing.T) {
	m := newTestManager(t)

	gc, err := m.LoadGlobalContext()
	require.NoError(t, err)

	assert.Equal(t, "launch-q3", gc.Project)
	assert.Equal(t, "0%", gc.Global.OverallProgress)
	assert.NotNil(t, gc.AgentContexts)
	assert.Empty(t, gc.AgentContexts)
}

func TestUpdateGlobalContextMergesAndPersists(t *testing.T) {
	m := newTestManager(t)

	phase := "execution"
	err := m.UpdateGlobalContext(core.GlobalContextUpdate{
		Global: core.GlobalStateUpdate{CurrentPhase: &phase},
		AgentContexts: map[string]map[string]any{
			"finance_agent": {"task": "budget review"},
		},
	})
	require.NoError(t, err)

	// A second partial update must not clobber the first.
	progress := "40%"
	err = m.UpdateGlobalContext(core.GlobalContextUpdate{
		Global: core.GlobalStateUpdate{OverallProgress: &progress},
	})
	require.NoError(t, err)

	gc, err := m.LoadGlobalContext()
	require.NoError(t, err)
	assert.Equal(t, "execution", gc.Global.CurrentPhase)
	assert.Equal(t, "40%", gc.Global.OverallProgress)
	assert.Equal(t, "budget review", gc.AgentContexts["finance_agent"]["task"])
}

func TestGetAgentContextForDelegation(t *testing.T) {
	m := newTestManager(t)

	_, ok, err := m.GetAgentContextForDelegation("schedule_agent")
	require.NoError(t, err)
	assert.False(t, ok)

	err = m.UpdateGlobalContext(core.GlobalContextUpdate{
		AgentContexts: map[string]map[string]any{
			"schedule_agent": {"deadline": "2026-09-15"},
		},
	})
	require.NoError(t, err)

	ctx, ok, err := m.GetAgentContextForDelegation("schedule_agent")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-09-15", ctx["deadline"])
}

func TestUpdateStatusOverwritesWholesale(t *testing.T) {
	m := newTestManager(t)

	err := m.UpdateStatus("finance_agent", "Finance Agent", core.AgentWorkStatus{
		InProgress: []string{"quarterly budget"},
		NextSteps:  []string{"send report"},
	})
	require.NoError(t, err)

	err = m.UpdateStatus("finance_agent", "Finance Agent", core.AgentWorkStatus{
		InProgress: []string{"expense audit"},
	})
	require.NoError(t, err)

	status, err := m.CurrentStatus("finance_agent")
	require.NoError(t, err)
	assert.Contains(t, status, "expense audit")
	assert.NotContains(t, status, "quarterly budget")
	assert.NotContains(t, status, "send report")
}

func TestCurrentStatusEmptyForUnknownAgent(t *testing.T) {
	m := newTestManager(t)

	status, err := m.CurrentStatus("never_ran")
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestAppendWorkSessionIsAppendOnly(t *testing.T) {
	m := newTestManager(t)

	err := m.AppendWorkSession("secretary_agent", core.WorkSession{
		SessionID:      "session-1",
		TasksCompleted: []string{"drafted email"},
	})
	require.NoError(t, err)

	err = m.AppendWorkSession("secretary_agent", core.WorkSession{
		SessionID:      "session-2",
		TasksCompleted: []string{"created spreadsheet"},
		DecisionsMade:  []string{"use shared template"},
	})
	require.NoError(t, err)

	log, err := m.WorkLog("secretary_agent")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, "secretary_agent", log.AgentID)
	require.Len(t, log.Sessions, 2)
	assert.Equal(t, "session-1", log.Sessions[0].SessionID)
	assert.Equal(t, "session-2", log.Sessions[1].SessionID)
	assert.False(t, log.LastUpdated.IsZero())
}

func TestLoadAgentContextCombinesStatusAndLog(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.UpdateStatus("master_agent", "Master Agent", core.AgentWorkStatus{
		InProgress: []string{"coordinating launch"},
	}))
	require.NoError(t, m.AppendWorkSession("master_agent", core.WorkSession{
		SessionID: "session-9",
	}))

	ac, err := m.LoadAgentContext("master_agent")
	require.NoError(t, err)
	assert.Contains(t, ac.CurrentStatus, "coordinating launch")
	require.NotNil(t, ac.WorkLog)
	assert.Len(t, ac.WorkLog.Sessions, 1)
	assert.NotEmpty(t, ac.LastUpdated)
}

func TestLoadAgentContextEmptyForUnknownAgent(t *testing.T) {
	m := newTestManager(t)

	ac, err := m.LoadAgentContext("ghost_agent")
	require.NoError(t, err)
	assert.Empty(t, ac.CurrentStatus)
	assert.Nil(t, ac.WorkLog)
}

func TestCreateContextPackageRequiresTargetAndInstructions(t *testing.T) {
	m := newTestManager(t)

	_, err := m.CreateContextPackage("", "t1", "desc", nil, map[string]any{"do": "it"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = m.CreateContextPackage("finance_agent", "t1", "desc", nil, nil, nil, nil, nil)
	assert.Error(t, err)

	pkg, err := m.CreateContextPackage(
		"finance_agent", "t1", "review budget",
		nil, map[string]any{"steps": "check totals"}, nil, nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "finance_agent", pkg.TargetAgent)
	assert.NotNil(t, pkg.GlobalContext)
	assert.NotNil(t, pkg.RelatedInfo)
}

func TestConcurrentWorkSessionAppends(t *testing.T) {
	m := newTestManager(t)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.AppendWorkSession("finance_agent", core.WorkSession{
				SessionID: "session-x",
			}))
		}()
	}
	wg.Wait()

	log, err := m.WorkLog("finance_agent")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Len(t, log.Sessions, n)
}
