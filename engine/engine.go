// Package engine drives the conversation turn loop: prompt composition,
// bounded tool-call rounds with parallel dispatch, and final-answer
// extraction. The loop never raises past its own boundary; every failure
// becomes a textual answer the caller can return to the user.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/nextnine/agenthub/agent"
	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
	"github.com/nextnine/agenthub/model"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

// maxToolRounds is the hard ceiling on tool-dispatch rounds per invocation.
// Reaching it forces extraction instead of looping forever.
const maxToolRounds = 5

// sentinelAnswer is returned when the loop ends on a tool round with no
// extractable text.
const sentinelAnswer = "tool calls completed, no further text"

// Engine runs invocations for any agent. Stateless per invocation; safe for
// concurrent use.
type Engine struct {
	backend    model.Model
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	docs       *workdocs.Manager
	logger     logging.Logger
}

// New constructs an Engine.
func New(
	backend model.Model,
	registry *tool.Registry,
	dispatcher *tool.Dispatcher,
	docs *workdocs.Manager,
	logger logging.Logger,
) *Engine {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Engine{
		backend:    backend,
		registry:   registry,
		dispatcher: dispatcher,
		docs:       docs,
		logger:     logger,
	}
}

// Invocation is one external request to an agent.
type Invocation struct {
	Agent          *agent.Agent
	SessionID      string
	Message        string
	ContextPackage *core.ContextPackage
	// History is the prior conversation for the session, oldest first,
	// loaded by the caller from the history store.
	History []core.ConversationTurn
}

// Run executes the turn loop and always returns an answer string. Errors of
// any kind (prompt build, model call, response parsing, panics) are converted
// into textual answers at this boundary.
func (e *Engine) Run(ctx context.Context, inv Invocation) (answer string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error(
				"engine.panic",
				"agent", inv.Agent.ID(),
				"recover", rec,
				"stack", string(debug.Stack()),
			)
			answer = fmt.Sprintf("An internal error occurred while handling your request: %v", rec)
		}

		inv.Agent.RecordExchange(
			core.ConversationTurn{Role: core.RoleUser, Content: inv.Message, Timestamp: time.Now()},
			core.ConversationTurn{Role: core.RoleAgent, Content: answer, Timestamp: time.Now()},
		)
	}()

	instructions, err := e.composeInstructions(inv)
	if err != nil {
		e.logger.Error("engine.prompt_failed", "agent", inv.Agent.ID(), "error", err.Error())
		return fmt.Sprintf("I could not prepare this request: %v", err)
	}

	messages := historyMessages(inv.History)
	messages = append(messages, model.Message{Role: "user", Text: inv.Message})
	declarations := e.registry.Declarations(inv.Agent.ID())

	var resp *model.Response
	for round := 0; round <= maxToolRounds; round++ {
		resp, err = e.backend.Generate(ctx, model.Request{
			Instructions: instructions,
			Messages:     messages,
			Tools:        declarations,
		})
		if err != nil {
			e.logger.Error("engine.model_failed", "agent", inv.Agent.ID(), "error", err.Error())
			return fmt.Sprintf("The model backend failed to answer: %v", err)
		}

		if len(resp.ToolCalls) == 0 {
			return extract(resp)
		}
		if round == maxToolRounds {
			// Ceiling reached with tool calls still pending; extract what we
			// have instead of dispatching another round.
			break
		}

		messages = append(messages, model.Message{
			Role:      "assistant",
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, e.dispatchRound(ctx, inv, round, resp.ToolCalls))
	}

	e.logger.Warn("engine.round_ceiling", "agent", inv.Agent.ID(), "session", inv.SessionID)
	return extract(resp)
}

// dispatchRound converts the model's tool calls into registry requests, runs
// them in parallel, and folds the results into a single tool message in
// request order.
func (e *Engine) dispatchRound(
	ctx context.Context,
	inv Invocation,
	round int,
	calls []model.ToolCall,
) model.Message {
	requests := make([]core.ToolRequest, len(calls))
	for i, call := range calls {
		args := map[string]any{}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				// Malformed argument JSON is the backend's failure; surface
				// it as an error result the model can react to.
				args = nil
			}
		}
		requests[i] = core.ToolRequest{ID: call.ID, Name: call.Name, Arguments: args}
	}

	e.logger.Debug(
		"engine.tool_round",
		"agent", inv.Agent.ID(),
		"round", round+1,
		"calls", len(calls),
	)

	results := e.dispatcher.Dispatch(ctx, inv.Agent.ID(), inv.SessionID, requests)

	responses := make([]model.ToolResponse, len(calls))
	for i, call := range calls {
		responses[i] = model.ToolResponse{
			ID:      call.ID,
			Name:    call.Name,
			Content: encodeResult(results[i]),
		}
	}
	return model.Message{Role: "tool", ToolResponses: responses}
}

func (e *Engine) composeInstructions(inv Invocation) (string, error) {
	inventory, err := e.docs.RenderResources()
	if err != nil {
		return "", fmt.Errorf("load resource inventory: %w", err)
	}

	var b strings.Builder
	b.WriteString(inv.Agent.Persona(inventory))

	if inv.ContextPackage != nil {
		b.WriteString("\n")
		b.WriteString(renderContextPackage(inv.ContextPackage))
	}

	status, err := e.docs.CurrentStatus(inv.Agent.ID())
	if err != nil {
		return "", fmt.Errorf("load current status: %w", err)
	}
	if status != "" {
		b.WriteString("\n## Your current status\n")
		b.WriteString(status)
	}

	return b.String(), nil
}

// renderContextPackage renders the delegation hand-off as four labeled
// blocks, matching the shape receiving agents are instructed to honor.
func renderContextPackage(pkg *core.ContextPackage) string {
	var b strings.Builder
	b.WriteString("## Delegated task context\n")
	if pkg.TaskDescription != "" {
		fmt.Fprintf(&b, "Task: %s (id %s)\n", pkg.TaskDescription, pkg.TaskID)
	} else if pkg.TaskID != "" {
		fmt.Fprintf(&b, "Task id: %s\n", pkg.TaskID)
	}

	writeBlock := func(title string, m map[string]any) {
		fmt.Fprintf(&b, "\n### %s\n", title)
		if len(m) == 0 {
			b.WriteString("(none)\n")
			return
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			fmt.Fprintf(&b, "%v\n", m)
			return
		}
		b.Write(data)
		b.WriteString("\n")
	}

	writeBlock("Global context", pkg.GlobalContext)
	writeBlock("Instructions", pkg.Instructions)
	writeBlock("Related information", pkg.RelatedInfo)
	writeBlock("Expected output", pkg.ExpectedOutput)
	if len(pkg.Collaboration) > 0 {
		writeBlock("Collaboration", pkg.Collaboration)
	}
	return b.String()
}

// historyMessages maps stored turns to backend messages.
func historyMessages(turns []core.ConversationTurn) []model.Message {
	messages := make([]model.Message, 0, len(turns)+1)
	for _, turn := range turns {
		role := "user"
		if turn.Role == core.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, model.Message{Role: role, Text: turn.Content})
	}
	return messages
}

// extract produces the final answer from the last model response. The loop
// must always return some string: text when present, the sentinel when only
// tool-call fragments remain, a stringified response otherwise.
func extract(resp *model.Response) string {
	if resp == nil {
		return sentinelAnswer
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	if len(resp.ToolCalls) > 0 {
		return sentinelAnswer
	}
	return fmt.Sprintf("%+v", *resp)
}

func encodeResult(result core.ToolResult) string {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","payload":{"message":"unencodable result: %v"}}`, err)
	}
	return string(data)
}
