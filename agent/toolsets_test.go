package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextnine/agenthub/client"
	"github.com/nextnine/agenthub/logging"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

type fakeInvoker struct {
	requests []client.InvokeRequest
	response *client.InvokeResponse
	err      error
}

func (f *fakeInvoker) Invoke(_ context.Context, req client.InvokeRequest) (*client.InvokeResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func testDeps(t *testing.T) (ToolsetDeps, *fakeInvoker) {
	t.Helper()
	docs, err := workdocs.NewManager(t.TempDir(), "launch-q3", nil)
	require.NoError(t, err)

	invoker := &fakeInvoker{
		response: &client.InvokeResponse{
			AgentID:   "finance_agent",
			SessionID: "session-sub",
			Response:  "budget reviewed",
			Status:    "success",
		},
	}
	return ToolsetDeps{Docs: docs, Invoker: invoker, Logger: logging.NoOpLogger{}}, invoker
}

func invocation(agentID string) *tool.Invocation {
	return &tool.Invocation{
		Context:   context.Background(),
		AgentID:   agentID,
		SessionID: "session-test",
		CallID:    "call-1",
		Logger:    logging.NoOpLogger{},
	}
}

func findTool(t *testing.T, tools []tool.Tool, name string) tool.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Name() == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestToolsetForUnknownCategory(t *testing.T) {
	deps, _ := testDeps(t)
	assert.Empty(t, ToolsetFor("warehouse", deps))
}

func TestToolsetRegistrationTable(t *testing.T) {
	deps, _ := testDeps(t)

	expected := map[string][]string{
		"master":    {"delegate_task", "create_context_package", "generate_report", "approve_decision"},
		"finance":   {"check_budget", "record_expense", "generate_financial_report", "calculate_roi"},
		"schedule":  {"add_event", "check_schedule", "send_reminder", "resolve_conflict"},
		"secretary": {"create_spreadsheet", "create_document", "send_email"},
	}
	for category, names := range expected {
		tools := ToolsetFor(category, deps)
		got := make([]string, 0, len(tools))
		for _, tl := range tools {
			got = append(got, tl.Name())
		}
		assert.ElementsMatch(t, names, got, "category %s", category)
	}
}

func TestDelegateTaskCarriesContextPackage(t *testing.T) {
	deps, invoker := testDeps(t)
	delegate := findTool(t, ToolsetFor("master", deps), "delegate_task")

	out, err := delegate.Call(invocation("master_agent"), map[string]any{
		"target_agent":     "finance_agent",
		"message":          "review the launch budget",
		"task_description": "budget review",
		"instructions":     map[string]any{"steps": "check totals against the plan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "budget reviewed", out["response"])
	assert.NotEmpty(t, out["task_id"])

	require.Len(t, invoker.requests, 1)
	req := invoker.requests[0]
	assert.Equal(t, "finance_agent", req.AgentID)
	require.NotNil(t, req.ContextPackage)
	assert.Equal(t, "finance_agent", req.ContextPackage.TargetAgent)
	assert.Equal(t, "check totals against the plan", req.ContextPackage.Instructions["steps"])
	assert.Equal(t, "launch-q3", req.ContextPackage.GlobalContext["project"])

	// The hand-off is recorded in the global document.
	ctx, ok, err := deps.Docs.GetAgentContextForDelegation("finance_agent")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "budget review", ctx["task_description"])
	assert.Equal(t, "master_agent", ctx["delegated_by"])
}

func TestCreateContextPackageDefaults(t *testing.T) {
	deps, _ := testDeps(t)
	create := findTool(t, ToolsetFor("master", deps), "create_context_package")

	out, err := create.Call(invocation("master_agent"), map[string]any{
		"target_agent": "schedule_agent",
		"instructions": map[string]any{"do": "book the launch review"},
	})
	require.NoError(t, err)
	assert.Equal(t, "schedule_agent", out["target_agent"])
	assert.Equal(t, map[string]any{}, out["related_info"])
	assert.Equal(t, map[string]any{}, out["expected_output"])
}

func TestCalculateROI(t *testing.T) {
	deps, _ := testDeps(t)
	roi := findTool(t, ToolsetFor("finance", deps), "calculate_roi")

	out, err := roi.Call(invocation("finance_agent"), map[string]any{
		"investment": 1000.0,
		"return":     1500.0,
	})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, out["roi_percent"], 0.001)

	_, err = roi.Call(invocation("finance_agent"), map[string]any{
		"investment": 0.0,
		"return":     100.0,
	})
	assert.Error(t, err)
}

func TestRecordExpenseWritesWorkLog(t *testing.T) {
	deps, _ := testDeps(t)
	record := findTool(t, ToolsetFor("finance", deps), "record_expense")

	out, err := record.Call(invocation("finance_agent"), map[string]any{
		"amount":   250.0,
		"category": "marketing",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["recorded"])

	log, err := deps.Docs.WorkLog("finance_agent")
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Len(t, log.Sessions, 1)
	assert.Contains(t, log.Sessions[0].TasksCompleted[0], "marketing")
}

func TestAddEventValidatesDate(t *testing.T) {
	deps, _ := testDeps(t)
	add := findTool(t, ToolsetFor("schedule", deps), "add_event")

	_, err := add.Call(invocation("schedule_agent"), map[string]any{
		"title": "launch review",
		"date":  "next tuesday",
	})
	assert.Error(t, err)

	out, err := add.Call(invocation("schedule_agent"), map[string]any{
		"title": "launch review",
		"date":  "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["created"])
	assert.NotEmpty(t, out["event_id"])
}

func TestCreateSpreadsheetRegistersResource(t *testing.T) {
	deps, _ := testDeps(t)
	create := findTool(t, ToolsetFor("secretary", deps), "create_spreadsheet")

	out, err := create.Call(invocation("secretary_agent"), map[string]any{
		"name":    "budget_sheet",
		"purpose": "budget tracking",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["created"])

	resources, err := deps.Docs.Resources()
	require.NoError(t, err)
	require.Contains(t, resources, "budget_sheet")
	assert.Equal(t, "spreadsheet", resources["budget_sheet"].Type)
	assert.Equal(t, out["resource_id"], resources["budget_sheet"].ID)
}
