package agent

import (
	"fmt"
	"time"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/internal/util"
	"github.com/nextnine/agenthub/tool"
)

// financeToolset builds the finance agent's tools. Expense records land in
// the agent's work log; budget figures are service-local until a real ledger
// backend is wired in.
func financeToolset(deps ToolsetDeps) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool(
			"check_budget",
			"Check remaining budget, optionally for one category",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{"type": "string", "description": "Budget category, e.g. marketing"},
				},
				"required": []string{},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				category, _ := args["category"].(string)
				if category == "" {
					category = "overall"
				}
				return map[string]any{
					"category":   category,
					"currency":   "USD",
					"allocated":  50000.0,
					"spent":      12500.0,
					"remaining":  37500.0,
					"checked_at": time.Now().Format(time.RFC3339),
				}, nil
			},
		),

		tool.NewFunctionTool(
			"record_expense",
			"Record an expense against a budget category",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount":      map[string]any{"type": "number"},
					"category":    map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"amount", "category"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				amount, _ := args["amount"].(float64)
				category, _ := args["category"].(string)
				description, _ := args["description"].(string)
				if amount <= 0 {
					return nil, tool.NewToolError("record_expense", "amount must be positive", "VALIDATION_ERROR")
				}

				expenseID := util.NewID()
				entry := fmt.Sprintf("recorded expense %s: %.2f USD in %s", expenseID, amount, category)
				if description != "" {
					entry += " (" + description + ")"
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
					"expense_id": expenseID,
					"amount":     amount,
					"category":   category,
					"recorded":   true,
				}, nil
			},
		),

		tool.NewFunctionTool(
			"generate_financial_report",
			"Generate a financial summary for a reporting period",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"period": map[string]any{"type": "string", "description": "Reporting period, e.g. 2026-Q3"},
				},
				"required": []string{"period"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				period, _ := args["period"].(string)
				return map[string]any{
					"period":       period,
					"currency":     "USD",
					"total_budget": 50000.0,
					"total_spent":  12500.0,
					"burn_rate":    "25%",
					"generated_at": time.Now().Format(time.RFC3339),
				}, nil
			},
		),

		tool.NewFunctionTool(
			"calculate_roi",
			"Calculate return on investment as a percentage",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"investment": map[string]any{"type": "number", "description": "Amount invested"},
					"return":     map[string]any{"type": "number", "description": "Amount returned"},
				},
				"required": []string{"investment", "return"},
			},
			func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
				investment, _ := args["investment"].(float64)
				returned, _ := args["return"].(float64)
				if investment <= 0 {
					return nil, tool.NewToolError("calculate_roi", "investment must be positive", "VALIDATION_ERROR")
				}

				roi := (returned - investment) / investment * 100
				return map[string]any{
					"investment":  investment,
					"return":      returned,
					"roi_percent": roi,
				}, nil
			},
		),
	}
}
