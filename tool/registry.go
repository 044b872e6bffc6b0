package tool

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
)

// Registry maps tool names to handlers, partitioned into a common set shared
// by all agents and per-agent sets owned by a single agent. Resolution tries
// the agent-specific set first and falls back to common; an unresolved name
// yields a not_implemented result, never a hard failure, so the turn loop
// keeps working with partial tool coverage.
type Registry struct {
	mu     sync.RWMutex
	common map[string]Tool
	agents map[string]map[string]Tool
	logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{
		common: make(map[string]Tool),
		agents: make(map[string]map[string]Tool),
		logger: logger,
	}
}

// RegisterCommon adds a tool to the shared set. Names must be unique within
// the common set.
func (r *Registry) RegisterCommon(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.common[t.Name()]; exists {
		return fmt.Errorf("common tool %q already registered", t.Name())
	}
	r.common[t.Name()] = t
	return nil
}

// RegisterAgentTool adds a tool owned by one agent. The name must be unique
// within the agent's effective tool set (common plus agent-specific).
func (r *Registry) RegisterAgentTool(agentID string, t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.common[t.Name()]; exists {
		return fmt.Errorf("tool %q for agent %s collides with a common tool", t.Name(), agentID)
	}
	set, ok := r.agents[agentID]
	if !ok {
		set = make(map[string]Tool)
		r.agents[agentID] = set
	}
	if _, exists := set[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered for agent %s", t.Name(), agentID)
	}
	set[t.Name()] = t
	return nil
}

// Resolve returns the handler for a tool name, agent-specific set first.
func (r *Registry) Resolve(agentID, name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if set, ok := r.agents[agentID]; ok {
		if t, ok := set[name]; ok {
			return t, true
		}
	}
	t, ok := r.common[name]
	return t, ok
}

// Declarations returns the effective tool declarations for an agent:
// agent-specific tools first, then the common set.
func (r *Registry) Declarations(agentID string) []core.ToolDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls := make([]core.ToolDeclaration, 0, len(r.agents[agentID])+len(r.common))
	for _, t := range r.agents[agentID] {
		decls = append(decls, Declaration(t))
	}
	for _, t := range r.common {
		decls = append(decls, Declaration(t))
	}
	return decls
}

// Execute runs one tool invocation to completion and always produces a
// result. Unknown names yield not_implemented; handler errors and panics are
// converted to status:error results at this boundary.
func (r *Registry) Execute(inv *Invocation, req core.ToolRequest) (result core.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(
				"tool.panic",
				"tool", req.Name,
				"agent", inv.AgentID,
				"recover", rec,
				"stack", string(debug.Stack()),
			)
			result = core.ErrorResult(fmt.Sprintf("tool %s panicked", req.Name))
		}
	}()

	impl, ok := r.Resolve(inv.AgentID, req.Name)
	if !ok {
		return core.NotImplementedResult(req.Name)
	}

	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}

	payload, err := impl.Call(inv, args)
	if err != nil {
		return core.ErrorResult(err.Error())
	}
	return core.SuccessResult(payload)
}
