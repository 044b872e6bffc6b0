package tool

import (
	"fmt"
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/workdocs"
)

// NewCommonTools builds the toolset every agent shares: status snapshots,
// work-log appends, cross-agent context reads, global context updates, and
// the shared project-resource inventory. nameOf maps an agent id to its
// display name for rendered snapshots; pass nil to use the id itself.
func NewCommonTools(docs *workdocs.Manager, nameOf func(agentID string) string) []Tool {
	if nameOf == nil {
		nameOf = func(agentID string) string { return agentID }
	}

	return []Tool{
		NewFunctionTool(
			"update_current_status",
			"Overwrite your current working status snapshot (in progress, waiting, blocking issues, next steps)",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"in_progress":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"waiting":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"blocking_issues": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"next_steps":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				status := core.AgentWorkStatus{
					InProgress:     toStringSlice(args["in_progress"]),
					Waiting:        toStringSlice(args["waiting"]),
					BlockingIssues: toStringSlice(args["blocking_issues"]),
					NextSteps:      toStringSlice(args["next_steps"]),
					UpdatedAt:      time.Now(),
				}
				if err := docs.UpdateStatus(inv.AgentID, nameOf(inv.AgentID), status); err != nil {
					return nil, err
				}
				return map[string]any{"updated": true, "agent_id": inv.AgentID}, nil
			},
		),

		NewFunctionTool(
			"log_work_session",
			"Append a completed work session to your append-only work log",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tasks_completed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"decisions_made":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"files_modified":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"context_received": map[string]any{
						"type":        "object",
						"description": "The context package this session acted on, if any",
					},
				},
				"required": []string{"tasks_completed"},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				session := core.WorkSession{
					SessionID:       inv.SessionID,
					StartedAt:       time.Now(),
					TasksCompleted:  toStringSlice(args["tasks_completed"]),
					DecisionsMade:   toStringSlice(args["decisions_made"]),
					FilesModified:   toStringSlice(args["files_modified"]),
					ContextReceived: toMap(args["context_received"]),
				}
				if err := docs.AppendWorkSession(inv.AgentID, session); err != nil {
					return nil, err
				}
				return map[string]any{"logged": true, "session_id": inv.SessionID}, nil
			},
		),

		NewFunctionTool(
			"get_agent_context",
			"Read another agent's current status and work log",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent_id": map[string]any{"type": "string", "description": "Agent to inspect"},
				},
				"required": []string{"agent_id"},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				agentID, _ := args["agent_id"].(string)
				if agentID == "" {
					return nil, NewToolError("get_agent_context", "agent_id must not be empty", "VALIDATION_ERROR")
				}
				ac, err := docs.LoadAgentContext(agentID)
				if err != nil {
					return nil, err
				}
				out := map[string]any{
					"agent_id":       agentID,
					"current_status": ac.CurrentStatus,
					"last_updated":   ac.LastUpdated,
				}
				if ac.WorkLog != nil {
					out["work_log"] = ac.WorkLog
				}
				return out, nil
			},
		),

		NewFunctionTool(
			"update_global_context",
			"Merge a partial update into the shared global project context",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"current_phase":      map[string]any{"type": "string"},
					"overall_progress":   map[string]any{"type": "string"},
					"critical_deadlines": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"blocking_issues":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"agent_contexts": map[string]any{
						"type":        "object",
						"description": "Per-agent context entries, replaced wholesale per agent id",
					},
				},
				"required": []string{},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				var update core.GlobalContextUpdate
				if v, ok := args["current_phase"].(string); ok {
					update.Global.CurrentPhase = &v
				}
				if v, ok := args["overall_progress"].(string); ok {
					update.Global.OverallProgress = &v
				}
				if v := toStringSlice(args["critical_deadlines"]); v != nil {
					update.Global.CriticalDeadlines = v
				}
				if v := toStringSlice(args["blocking_issues"]); v != nil {
					update.Global.BlockingIssues = v
				}
				if contexts := toMap(args["agent_contexts"]); contexts != nil {
					update.AgentContexts = map[string]map[string]any{}
					for agentID, v := range contexts {
						if m := toMap(v); m != nil {
							update.AgentContexts[agentID] = m
						}
					}
				}
				if err := docs.UpdateGlobalContext(update); err != nil {
					return nil, err
				}
				return map[string]any{"updated": true}, nil
			},
		),

		NewFunctionTool(
			"register_project_resource",
			"Register a shared project resource (spreadsheet, document, calendar) so all agents can reference it",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "description": "Stable resource name"},
					"resource_id": map[string]any{"type": "string", "description": "External identifier"},
					"type":        map[string]any{"type": "string", "description": "Resource kind, e.g. spreadsheet"},
					"purpose":     map[string]any{"type": "string"},
				},
				"required": []string{"name", "resource_id", "type"},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				name, _ := args["name"].(string)
				resourceID, _ := args["resource_id"].(string)
				kind, _ := args["type"].(string)
				purpose, _ := args["purpose"].(string)
				err := docs.RegisterResource(name, workdocs.Resource{
					ID:      resourceID,
					Type:    kind,
					Purpose: purpose,
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"registered": true, "name": name}, nil
			},
		),

		NewFunctionTool(
			"remove_project_resource",
			"Remove a shared project resource from the inventory",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
				},
				"required": []string{"name"},
			},
			func(inv *Invocation, args map[string]any) (map[string]any, error) {
				name, _ := args["name"].(string)
				if err := docs.RemoveResource(name); err != nil {
					return nil, err
				}
				return map[string]any{"removed": true, "name": name}, nil
			},
		),
	}
}

// RegisterCommonTools registers the shared toolset on a registry.
func RegisterCommonTools(r *Registry, docs *workdocs.Manager, nameOf func(agentID string) string) error {
	for _, t := range NewCommonTools(docs, nameOf) {
		if err := r.RegisterCommon(t); err != nil {
			return fmt.Errorf("register common tool: %w", err)
		}
	}
	return nil
}

// toStringSlice accepts the []any shape JSON decoding produces as well as a
// typed []string, returning nil for anything else.
func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func toMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
