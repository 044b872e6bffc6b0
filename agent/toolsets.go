package agent

import (
	"context"
	"fmt"

	"github.com/nextnine/agenthub/client"
	"github.com/nextnine/agenthub/logging"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

// Invoker issues a delegated sub-invocation against another agent. Satisfied
// by *client.Client; tests substitute a fake.
type Invoker interface {
	Invoke(ctx context.Context, req client.InvokeRequest) (*client.InvokeResponse, error)
}

// ToolsetDeps carries the collaborators agent-specific tools close over.
type ToolsetDeps struct {
	Docs    *workdocs.Manager
	Invoker Invoker
	Logger  logging.Logger
}

// ToolsetFactory builds the agent-specific toolset for one job category.
type ToolsetFactory func(deps ToolsetDeps) []tool.Tool

// toolsetFactories is the explicit registration table from job-category tag
// to toolset. Categories absent from the table get no agent-specific tools;
// the common toolset still applies.
var toolsetFactories = map[string]ToolsetFactory{
	"master":    masterToolset,
	"finance":   financeToolset,
	"schedule":  scheduleToolset,
	"secretary": secretaryToolset,
}

// ToolsetFor returns the agent-specific tools for a job category, empty for
// unknown categories.
func ToolsetFor(category string, deps ToolsetDeps) []tool.Tool {
	factory, ok := toolsetFactories[category]
	if !ok {
		return nil
	}
	return factory(deps)
}

// RegisterToolset registers an agent's category toolset on the registry.
func RegisterToolset(r *tool.Registry, agentID, category string, deps ToolsetDeps) error {
	for _, t := range ToolsetFor(category, deps) {
		if err := r.RegisterAgentTool(agentID, t); err != nil {
			return fmt.Errorf("register %s toolset: %w", category, err)
		}
	}
	return nil
}
