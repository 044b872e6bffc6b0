package agent

import (
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/internal/util"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

// secretaryToolset builds the secretary agent's tools. Created artifacts are
// registered in the shared resource inventory so other agents can reference
// them; productivity-suite backends stay behind the tool contract.
func secretaryToolset(deps ToolsetDeps) []tool.Tool {
	createArtifact := func(toolName, kind string) *tool.FunctionTool {
		return tool.NewFunctionTool(
			toolName,
			"Create a "+kind+" and register it as a shared project resource",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string", "description": "Resource name"},
					"purpose": map[string]any{"type": "string"},
				},
				"required": []string{"name"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				name, _ := args["name"].(string)
				purpose, _ := args["purpose"].(string)

				resourceID := util.NewID()
				err := deps.Docs.RegisterResource(name, workdocs.Resource{
					ID:      resourceID,
					Type:    kind,
					Purpose: purpose,
				})
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"name":        name,
					"resource_id": resourceID,
					"type":        kind,
					"created":     true,
				}, nil
			},
		)
	}

	return []tool.Tool{
		createArtifact("create_spreadsheet", "spreadsheet"),
		createArtifact("create_document", "document"),

		tool.NewFunctionTool(
			"send_email",
			"Compose and queue an email on behalf of the project",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"to":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"subject": map[string]any{"type": "string"},
					"body":    map[string]any{"type": "string"},
				},
				"required": []string{"to", "subject"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				recipients := asStringSlice(args["to"])
				subject, _ := args["subject"].(string)
				if len(recipients) == 0 {
					return nil, tool.NewToolError("send_email", "at least one recipient is required", "VALIDATION_ERROR")
				}

				err := deps.Docs.AppendWorkSession(inv.AgentID, core.WorkSession{
					SessionID:      inv.SessionID,
					StartedAt:      time.Now(),
					TasksCompleted: []string{"drafted email: " + subject},
				})
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"to":      recipients,
					"subject": subject,
					"queued":  true,
					"note":    "no mail backend connected; the draft was recorded in the work log",
				}, nil
			},
		),
	}
}
