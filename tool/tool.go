// Package tool implements the tool-calling subsystem: schema-declared
// capabilities agents expose to the model backend, a registry that partitions
// them into common and agent-specific sets, and a parallel in-turn dispatcher.
package tool

import (
	"context"
	"fmt"

	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/logging"
)

// Invocation carries per-call context into a tool handler: the deadline-aware
// context, the identity of the invoking agent, the session the turn belongs
// to, and the correlation id of the originating model request.
type Invocation struct {
	Context   context.Context
	AgentID   string
	SessionID string
	CallID    string
	Logger    logging.Logger
}

// Tool is a named, schema-described capability an agent may ask the model
// backend to invoke on its behalf.
//
// Implementations should be safe for concurrent use; a turn dispatches every
// requested call of a round in parallel.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description is provided to the model backend to guide tool selection.
	Description() string

	// Parameters returns a JSON-schema subset describing accepted arguments.
	Parameters() map[string]any

	// Call executes the tool. Returned maps become the result payload;
	// errors are converted to status:error results at the registry boundary
	// and never propagate further.
	Call(inv *Invocation, args map[string]any) (map[string]any, error)
}

// Declaration renders a tool into the wire form advertised to model backends.
func Declaration(t Tool) core.ToolDeclaration {
	return core.ToolDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
