package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
)

// ErrAgentExists is returned when dynamic registration reuses an agent id.
var ErrAgentExists = errors.New("agent id already registered")

// ErrAgentNotFound is returned for lookups of unknown agent ids.
var ErrAgentNotFound = errors.New("agent not found")

type agentsDocument struct {
	Agents []core.AgentDefinition `json:"agents"`
}

// AgentsFile is the persisted agent definition set. Invalid definitions are
// skipped at load time with a log line; startup continues with the rest.
// Dynamic registrations append to the file; existing definitions are never
// mutated.
type AgentsFile struct {
	path   string
	logger logging.Logger

	mu    sync.RWMutex
	defs  []core.AgentDefinition
	index map[string]int
}

// LoadAgentsFile reads the agents file. A missing file yields an empty set so
// a fresh deployment can register agents dynamically.
func LoadAgentsFile(path string, logger logging.Logger) (*AgentsFile, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	f := &AgentsFile{
		path:   path,
		logger: logger,
		index:  make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("agents.file_missing", "path", path)
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	var doc agentsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode agents file: %w", err)
	}

	for _, def := range doc.Agents {
		if err := def.Validate(); err != nil {
			logger.Warn("agents.definition_skipped", "agent", def.ID, "error", err.Error())
			continue
		}
		if _, dup := f.index[def.ID]; dup {
			logger.Warn("agents.duplicate_skipped", "agent", def.ID)
			continue
		}
		f.index[def.ID] = len(f.defs)
		f.defs = append(f.defs, def)
	}

	logger.Info("agents.loaded", "path", path, "count", len(f.defs))
	return f, nil
}

// Definitions returns a copy of all loaded definitions.
func (f *AgentsFile) Definitions() []core.AgentDefinition {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.AgentDefinition, len(f.defs))
	copy(out, f.defs)
	return out
}

// Get returns the definition for an agent id.
func (f *AgentsFile) Get(id string) (core.AgentDefinition, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	idx, ok := f.index[id]
	if !ok {
		return core.AgentDefinition{}, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return f.defs[idx], nil
}

// Add validates and appends a new definition, persisting the file. A
// duplicate id is rejected without mutating the in-memory set or the file.
func (f *AgentsFile) Add(def core.AgentDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.index[def.ID]; dup {
		return fmt.Errorf("%w: %s", ErrAgentExists, def.ID)
	}

	next := append(append([]core.AgentDefinition{}, f.defs...), def)
	if err := f.persist(next); err != nil {
		return fmt.Errorf("persist agents file: %w", err)
	}

	f.index[def.ID] = len(f.defs)
	f.defs = next
	f.logger.Info("agents.registered", "agent", def.ID)
	return nil
}

func (f *AgentsFile) persist(defs []core.AgentDefinition) error {
	data, err := json.MarshalIndent(agentsDocument{Agents: defs}, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
