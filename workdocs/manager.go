// Package workdocs persists the cross-agent coordination state: the global
// project context document, per-agent status snapshots and append-only work
// logs, and the shared project-resource inventory. It also builds the context
// packages used to hand work from one agent to another.
//
// All state is file-backed under a single data directory, mirroring the
// layout the agents themselves reason about (one subdirectory per agent id).
// Writes are read-modify-write under a single-writer-at-a-time discipline per
// agent id; the global document and the resource inventory share one lock.
package workdocs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
)

const (
	statusFile  = "current_status.md"
	workLogFile = "work_log.json"
	contextFile = "context_history.json"

	// The global context document lives under the master agent's directory,
	// since the master agent is its only writer in practice.
	masterDir = "master_agent"
)

// AgentContext is the combined per-agent view returned to status queries and
// delegating agents.
type AgentContext struct {
	CurrentStatus string        `json:"current_status"`
	WorkLog       *core.WorkLog `json:"work_log,omitempty"`
	LastUpdated   string        `json:"last_updated"`
}

// Manager owns the workdocs data directory.
type Manager struct {
	dataDir string
	project string
	logger  logging.Logger

	globalMu sync.Mutex

	agentMuMu sync.Mutex
	agentMu   map[string]*sync.Mutex
}

// NewManager creates the data directory if needed and returns a Manager.
func NewManager(dataDir, project string, logger logging.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := os.MkdirAll(filepath.Join(dataDir, masterDir), 0o755); err != nil {
		return nil, fmt.Errorf("create workdocs dir: %w", err)
	}
	return &Manager{
		dataDir: dataDir,
		project: project,
		logger:  logger,
		agentMu: make(map[string]*sync.Mutex),
	}, nil
}

func (m *Manager) lockAgent(agentID string) *sync.Mutex {
	m.agentMuMu.Lock()
	defer m.agentMuMu.Unlock()
	mu, ok := m.agentMu[agentID]
	if !ok {
		mu = &sync.Mutex{}
		m.agentMu[agentID] = mu
	}
	return mu
}

// LoadGlobalContext returns the persisted global context, or a fresh default
// document if none exists yet. A missing file is first-use bootstrapping, not
// an error.
func (m *Manager) LoadGlobalContext() (*core.GlobalContext, error) {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()
	return m.loadGlobalContextLocked()
}

func (m *Manager) loadGlobalContextLocked() (*core.GlobalContext, error) {
	path := filepath.Join(m.dataDir, masterDir, contextFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewGlobalContext(m.project), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read global context: %w", err)
	}
	var gc core.GlobalContext
	if err := json.Unmarshal(data, &gc); err != nil {
		return nil, fmt.Errorf("decode global context: %w", err)
	}
	if gc.AgentContexts == nil {
		gc.AgentContexts = map[string]map[string]any{}
	}
	return &gc, nil
}

// UpdateGlobalContext merges the update into the persisted document and
// writes it back atomically (temp file + rename).
func (m *Manager) UpdateGlobalContext(u core.GlobalContextUpdate) error {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()

	gc, err := m.loadGlobalContextLocked()
	if err != nil {
		return err
	}
	gc.Apply(u)

	path := filepath.Join(m.dataDir, masterDir, contextFile)
	return writeJSONAtomic(path, gc)
}

// CreateContextPackage builds a delegation package. Pure constructor aside
// from timestamping; nothing is persisted.
func (m *Manager) CreateContextPackage(
	targetAgent, taskID, taskDescription string,
	globalContext, instructions, relatedInfo, expectedOutput, collaboration map[string]any,
) (*core.ContextPackage, error) {
	return core.NewContextPackage(
		targetAgent, taskID, taskDescription,
		globalContext, instructions, relatedInfo, expectedOutput, collaboration,
	)
}

// LoadAgentContext reads an agent's status snapshot and work log. Agents with
// no recorded work yield an empty context, never an error.
func (m *Manager) LoadAgentContext(agentID string) (AgentContext, error) {
	mu := m.lockAgent(agentID)
	mu.Lock()
	defer mu.Unlock()

	var ac AgentContext

	status, err := m.readStatusLocked(agentID)
	if err != nil {
		return ac, err
	}
	ac.CurrentStatus = status

	log, err := m.readWorkLogLocked(agentID)
	if err != nil {
		return ac, err
	}
	if log != nil {
		ac.WorkLog = log
		ac.LastUpdated = log.LastUpdated.Format(time.RFC3339)
	}
	return ac, nil
}

// GetAgentContextForDelegation returns the most recent delegated context
// recorded for the agent in the global document, or false if none exists.
func (m *Manager) GetAgentContextForDelegation(agentID string) (map[string]any, bool, error) {
	gc, err := m.LoadGlobalContext()
	if err != nil {
		return nil, false, err
	}
	ctx, ok := gc.AgentContexts[agentID]
	return ctx, ok, nil
}

// UpdateStatus overwrites the agent's status snapshot wholesale.
func (m *Manager) UpdateStatus(agentID, agentName string, status core.AgentWorkStatus) error {
	mu := m.lockAgent(agentID)
	mu.Lock()
	defer mu.Unlock()

	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now()
	}

	dir := filepath.Join(m.dataDir, agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create agent dir: %w", err)
	}
	path := filepath.Join(dir, statusFile)
	if err := os.WriteFile(path, []byte(status.Render(agentName)), 0o644); err != nil {
		return fmt.Errorf("write status snapshot: %w", err)
	}
	return nil
}

// CurrentStatus returns the raw persisted snapshot, empty when the agent has
// never recorded status.
func (m *Manager) CurrentStatus(agentID string) (string, error) {
	mu := m.lockAgent(agentID)
	mu.Lock()
	defer mu.Unlock()
	return m.readStatusLocked(agentID)
}

func (m *Manager) readStatusLocked(agentID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.dataDir, agentID, statusFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read status snapshot: %w", err)
	}
	return string(data), nil
}

// AppendWorkSession appends one session to the agent's work log. The log is
// append-only; only LastUpdated changes besides the new entry.
func (m *Manager) AppendWorkSession(agentID string, session core.WorkSession) error {
	mu := m.lockAgent(agentID)
	mu.Lock()
	defer mu.Unlock()

	log, err := m.readWorkLogLocked(agentID)
	if err != nil {
		return err
	}
	if log == nil {
		log = &core.WorkLog{AgentID: agentID}
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	log.Sessions = append(log.Sessions, session)
	log.LastUpdated = time.Now()

	dir := filepath.Join(m.dataDir, agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create agent dir: %w", err)
	}
	return writeJSONAtomic(filepath.Join(dir, workLogFile), log)
}

// WorkLog returns the agent's work log, or nil when none has been recorded.
func (m *Manager) WorkLog(agentID string) (*core.WorkLog, error) {
	mu := m.lockAgent(agentID)
	mu.Lock()
	defer mu.Unlock()
	return m.readWorkLogLocked(agentID)
}

func (m *Manager) readWorkLogLocked(agentID string) (*core.WorkLog, error) {
	data, err := os.ReadFile(filepath.Join(m.dataDir, agentID, workLogFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read work log: %w", err)
	}
	var log core.WorkLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("decode work log: %w", err)
	}
	return &log, nil
}

// writeJSONAtomic writes v as indented JSON via a temp file rename so
// concurrent readers never observe a torn document.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
