package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextnine/agenthub/agent"
	"github.com/nextnine/agenthub/config"
	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/engine"
	"github.com/nextnine/agenthub/history"
	"github.com/nextnine/agenthub/model"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

type testServer struct {
	handler *Handler
	echo    http.Handler
	backend *model.MockModel
	store   *history.MemoryStore
	docs    *workdocs.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	agentsFile, err := config.LoadAgentsFile(filepath.Join(t.TempDir(), "agents.json"), nil)
	require.NoError(t, err)
	require.NoError(t, agentsFile.Add(core.AgentDefinition{
		ID: "finance_agent", Name: "Finance Agent", Role: "finance manager",
		JobCategory: "finance", Enabled: true,
	}))
	require.NoError(t, agentsFile.Add(core.AgentDefinition{
		ID: "master_agent", Name: "Master Agent", Role: "coordinator",
		JobCategory: "master", Enabled: true,
	}))

	docs, err := workdocs.NewManager(t.TempDir(), "launch-q3", nil)
	require.NoError(t, err)

	store := history.NewMemoryStore()
	registry := tool.NewRegistry(nil)
	require.NoError(t, tool.RegisterCommonTools(registry, docs, nil))

	backend := model.NewMockModel("mock-1")
	dispatcher := tool.NewDispatcher(registry, tool.DispatcherConfig{}, nil)
	eng := engine.New(backend, registry, dispatcher, docs, nil)

	h := NewHandler(HandlerOptions{
		AgentsFile: agentsFile,
		Store:      store,
		Docs:       docs,
		Registry:   registry,
		Engine:     eng,
		Deps:       agent.ToolsetDeps{Docs: docs},
	})

	return &testServer{
		handler: h,
		echo:    NewEcho(h),
		backend: backend,
		store:   store,
		docs:    docs,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

const echoHeaderContentType = "Content-Type"

func TestBanner(t *testing.T) {
	s := newTestServer(t)

	rec, payload := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "agenthub", payload["service"])
	assert.Equal(t, float64(2), payload["agents_loaded"])
}

func TestInvokeGeneratesSessionAndPersists(t *testing.T) {
	s := newTestServer(t)
	s.backend.Enqueue(&model.Response{Text: "the budget is fine", FinishReason: "stop"})

	rec, payload := s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"finance_agent","message":"how is the budget"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "finance_agent", payload["agent_id"])
	assert.Equal(t, "Finance Agent", payload["agent_name"])
	assert.Equal(t, "the budget is fine", payload["response"])
	assert.Equal(t, "success", payload["status"])

	sessionID, _ := payload["session_id"].(string)
	require.NotEmpty(t, sessionID)

	// Exactly two turns persisted, user first.
	rec, payload = s.do(t, http.MethodGet, "/api/v1/session/"+sessionID+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["count"])
	turns := payload["history"].([]any)
	first := turns[0].(map[string]any)
	assert.Equal(t, core.RoleUser, first["role"])
	assert.Equal(t, "how is the budget", first["content"])
}

func TestInvokeUnknownAgent(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"ghost_agent","message":"hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvokeValidatesBody(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agent/invoke", `{"agent_id":"finance_agent"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvokeRejectsContextPackageMismatch(t *testing.T) {
	s := newTestServer(t)

	rec, payload := s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"finance_agent","message":"act","context_package":{
			"target_agent":"schedule_agent",
			"instructions":{"do":"something"}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "schedule_agent")
}

func TestInvokeRejectsForeignSession(t *testing.T) {
	s := newTestServer(t)
	s.backend.Enqueue(&model.Response{Text: "ok", FinishReason: "stop"})

	_, payload := s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"finance_agent","message":"hello"}`)
	sessionID := payload["session_id"].(string)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"master_agent","message":"hello","session_id":"`+sessionID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAgents(t *testing.T) {
	s := newTestServer(t)

	rec, payload := s.do(t, http.MethodGet, "/api/v1/agents", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["count"])
}

func TestRegisterAgentDynamic(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agents",
		`{"id":"secretary_agent","name":"Secretary Agent","role":"assistant",
		  "job_category":"secretary","enabled":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The new agent is immediately invokable.
	s.backend.Enqueue(&model.Response{Text: "hello", FinishReason: "stop"})
	rec, _ = s.do(t, http.MethodPost, "/api/v1/agent/invoke",
		`{"agent_id":"secretary_agent","message":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAgentDuplicate(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agents",
		`{"id":"finance_agent","name":"Impostor","role":"finance"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterAgentInvalid(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/agents", `{"id":"nameless"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgentStatus(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.docs.UpdateStatus("finance_agent", "Finance Agent", core.AgentWorkStatus{
		InProgress: []string{"quarterly review"},
	}))
	require.NoError(t, s.docs.AppendWorkSession("finance_agent", core.WorkSession{SessionID: "session-9"}))

	rec, payload := s.do(t, http.MethodGet, "/api/v1/agent/finance_agent/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload["current_status"], "quarterly review")
	summary := payload["work_log_summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["session_count"])
	assert.Equal(t, "session-9", summary["last_session_id"])
}

func TestAgentStatusUnknown(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/agent/ghost_agent/status", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessionsFiltered(t *testing.T) {
	s := newTestServer(t)

	s.backend.Enqueue(&model.Response{Text: "a", FinishReason: "stop"})
	s.backend.Enqueue(&model.Response{Text: "b", FinishReason: "stop"})
	s.do(t, http.MethodPost, "/api/v1/agent/invoke", `{"agent_id":"finance_agent","message":"one"}`)
	s.do(t, http.MethodPost, "/api/v1/agent/invoke", `{"agent_id":"master_agent","message":"two"}`)

	rec, payload := s.do(t, http.MethodGet, "/api/v1/sessions?agent_id=finance_agent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["count"])
	session := payload["sessions"].([]any)[0].(map[string]any)
	assert.Equal(t, "finance_agent", session["agent_id"])
}

func TestSessionHistoryUnknown(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/session/no-such/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
