package agent

import (
	"fmt"
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/internal/util"
	"github.com/nextnine/agenthub/tool"
)

// scheduleToolset builds the schedule agent's tools. Events and reminders are
// recorded in the work log; calendar-suite backends stay behind the tool
// contract.
func scheduleToolset(deps ToolsetDeps) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"add_event",
			"Add an event to the project calendar",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":     map[string]any{"type": "string"},
					"date":      map[string]any{"type": "string", "description": "Event date, YYYY-MM-DD"},
					"time":      map[string]any{"type": "string", "description": "Start time, HH:MM"},
					"attendees": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"title", "date"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				title, _ := args["title"].(string)
				date, _ := args["date"].(string)
				startTime, _ := args["time"].(string)

				if _, err := time.Parse("2006-01-02", date); err != nil {
					return nil, tool.NewToolError("add_event", "date must be YYYY-MM-DD", "VALIDATION_ERROR")
				}

				eventID := util.NewID()
				entry := fmt.Sprintf("scheduled %q on %s", title, date)
				if startTime != "" {
					entry += " at " + startTime
				}
				err := deps.Docs.AppendWorkSession(inv.AgentID, core.WorkSession{
					SessionID:      inv.SessionID,
					StartedAt:      time.Now(),
					TasksCompleted: []string{entry},
				})
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"event_id": eventID,
					"title":    title,
					"date":     date,
					"time":     startTime,
					"created":  true,
				}, nil
			},
		),

		tool.NewFunctionTool(
			"check_schedule",
			"List known events for a date",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{"type": "string", "description": "Date to check, YYYY-MM-DD"},
				},
				"required": []string{"date"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				date, _ := args["date"].(string)
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return nil, tool.NewToolError("check_schedule", "date must be YYYY-MM-DD", "VALIDATION_ERROR")
				}
				return map[string]any{
					"date":   date,
					"events": []any{},
					"note":   "no calendar backend connected; events recorded in the work log only",
				}, nil
			},
		),

		tool.NewFunctionTool(
			"send_reminder",
			"Send a reminder about an upcoming event",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event_id": map[string]any{"type": "string"},
					"message":  map[string]any{"type": "string"},
				},
				"required": []string{"message"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				eventID, _ := args["event_id"].(string)
				message, _ := args["message"].(string)

				err := deps.Docs.AppendWorkSession(inv.AgentID, core.WorkSession{
					SessionID:      inv.SessionID,
					StartedAt:      time.Now(),
					TasksCompleted: []string{"queued reminder: " + message},
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{"event_id": eventID, "queued": true}, nil
			},
		),

		tool.NewFunctionTool(
			"resolve_conflict",
			"Propose a resolution for conflicting events",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"event_ids": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"event_ids"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				eventIDs := asStringSlice(args["event_ids"])
				if len(eventIDs) < 2 {
					return nil, tool.NewToolError("resolve_conflict", "at least two event ids are required", "VALIDATION_ERROR")
				}
				return map[string]any{
					"event_ids":  eventIDs,
					"resolution": fmt.Sprintf("keep %s, propose rescheduling the remaining %d event(s) to the next free slot", eventIDs[0], len(eventIDs)-1),
				}, nil
			},
		),
	}
}

func asStringSlice(v any) []string {
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
