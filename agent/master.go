package agent

import (
	"fmt"
	"time"

	"github.com/nextnine/agenthub/client"
	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/internal/util"
	"github.com/nextnine/agenthub/tool"
)

// masterToolset builds the coordinating agent's tools: delegation with a full
// context package, standalone package construction, cross-agent reporting,
// and decision approval.
func masterToolset(deps ToolsetDeps) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"delegate_task",
			"Delegate a task to another agent, carrying a complete context package",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_agent":     map[string]any{"type": "string", "description": "Agent id to delegate to"},
					"message":          map[string]any{"type": "string", "description": "The request for the receiving agent"},
					"task_description": map[string]any{"type": "string"},
					"instructions":     map[string]any{"type": "object", "description": "Specific directives for the task"},
					"related_info":     map[string]any{"type": "object"},
					"expected_output":  map[string]any{"type": "object"},
				},
				"required": []string{"target_agent", "message", "instructions"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				targetAgent, _ := args["target_agent"].(string)
				message, _ := args["message"].(string)
				taskDescription, _ := args["task_description"].(string)

				pkg, err := buildPackage(deps, targetAgent, taskDescription, args)
				if err != nil {
					return nil, err
				}

				// Record the hand-off in the global document so the target
				// agent's context survives beyond this delegation.
				err = deps.Docs.UpdateGlobalContext(core.GlobalContextUpdate{
					AgentContexts: map[string]map[string]any{
						targetAgent: {
							"task_id":          pkg.TaskID,
							"task_description": pkg.TaskDescription,
							"delegated_by":     inv.AgentID,
							"delegated_at":     time.Now().Format(time.RFC3339),
						},
					},
				})
				if err != nil {
					return nil, err
				}

				if deps.Invoker == nil {
					return nil, tool.NewToolError("delegate_task", "no invocation client configured", "EXECUTION_ERROR")
				}
				resp, err := deps.Invoker.Invoke(inv.Context, client.InvokeRequest{
					AgentID:        targetAgent,
					Message:        message,
					ContextPackage: pkg,
				})
				if err != nil {
					return nil, fmt.Errorf("delegation to %s failed: %w", targetAgent, err)
				}

				return map[string]any{
					"target_agent": targetAgent,
					"task_id":      pkg.TaskID,
					"session_id":   resp.SessionID,
					"response":     resp.Response,
				}, nil
			},
		),

		tool.NewFunctionTool(
			"create_context_package",
			"Build a context package for a task hand-off without delegating yet",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"target_agent":     map[string]any{"type": "string"},
					"task_description": map[string]any{"type": "string"},
					"instructions":     map[string]any{"type": "object"},
					"related_info":     map[string]any{"type": "object"},
					"expected_output":  map[string]any{"type": "object"},
					"collaboration":    map[string]any{"type": "object"},
				},
				"required": []string{"target_agent", "instructions"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				targetAgent, _ := args["target_agent"].(string)
				taskDescription, _ := args["task_description"].(string)

				pkg, err := buildPackage(deps, targetAgent, taskDescription, args)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"task_id":          pkg.TaskID,
					"target_agent":     pkg.TargetAgent,
					"task_description": pkg.TaskDescription,
					"global_context":   pkg.GlobalContext,
					"instructions":     pkg.Instructions,
					"related_info":     pkg.RelatedInfo,
					"expected_output":  pkg.ExpectedOutput,
					"collaboration":    pkg.Collaboration,
				}, nil
			},
		),

		tool.NewFunctionTool(
			"generate_report",
			"Compile a project status report from the global context and every agent's recorded context",
			map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				gc, err := deps.Docs.LoadGlobalContext()
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"project":            gc.Project,
					"current_phase":      gc.Global.CurrentPhase,
					"overall_progress":   gc.Global.OverallProgress,
					"critical_deadlines": gc.Global.CriticalDeadlines,
					"blocking_issues":    gc.Global.BlockingIssues,
					"agent_contexts":     gc.AgentContexts,
					"generated_at":       time.Now().Format(time.RFC3339),
				}, nil
			},
		),

		tool.NewFunctionTool(
			"approve_decision",
			"Record an approval or rejection of a proposed decision in the work log",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"decision": map[string]any{"type": "string"},
					"approved": map[string]any{"type": "boolean"},
					"reason":   map[string]any{"type": "string"},
				},
				"required": []string{"decision", "approved"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				decision, _ := args["decision"].(string)
				approved, _ := args["approved"].(bool)
				reason, _ := args["reason"].(string)

				verdict := "rejected"
				if approved {
					verdict = "approved"
				}
				entry := fmt.Sprintf("%s: %s", verdict, decision)
				if reason != "" {
					entry += " (" + reason + ")"
				}

				err := deps.Docs.AppendWorkSession(inv.AgentID, core.WorkSession{
					SessionID:     inv.SessionID,
					StartedAt:     time.Now(),
					DecisionsMade: []string{entry},
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"decision": decision, "approved": approved}, nil
			},
		),
	}
}

// buildPackage assembles a ContextPackage from tool arguments, embedding the
// current global context so the receiving agent sees the big picture.
func buildPackage(deps ToolsetDeps, targetAgent, taskDescription string, args map[string]any) (*core.ContextPackage, error) {
	gc, err := deps.Docs.LoadGlobalContext()
	if err != nil {
		return nil, err
	}

	globalContext := map[string]any{
		"project":            gc.Project,
		"current_phase":      gc.Global.CurrentPhase,
		"overall_progress":   gc.Global.OverallProgress,
		"critical_deadlines": gc.Global.CriticalDeadlines,
		"blocking_issues":    gc.Global.BlockingIssues,
	}

	return deps.Docs.CreateContextPackage(
		targetAgent,
		util.NewID(),
		taskDescription,
		globalContext,
		asMap(args["instructions"]),
		asMap(args["related_info"]),
		asMap(args["expected_output"]),
		asMap(args["collaboration"]),
	)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
