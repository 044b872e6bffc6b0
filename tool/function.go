package tool

import (
	"fmt"
	"time"

	"github.com/nextnine/agenthub/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool. It validates model-supplied arguments against the declared schema
// before execution and normalizes failures into *ToolError with consistent
// codes (VALIDATION_ERROR for schema mismatch, EXECUTION_ERROR otherwise;
// custom codes are preserved when the function returns *ToolError directly).
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(inv *Invocation, args map[string]any) (map[string]any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	roiTool := tool.NewFunctionTool(
//	  "calculate_roi",
//	  "Calculate return on investment",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "investment": map[string]any{"type": "number"},
//	      "return":     map[string]any{"type": "number"},
//	    },
//	    "required": []string{"investment", "return"},
//	  },
//	  func(inv *tool.Invocation, args map[string]any) (map[string]any, error) {
//	    ...
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(inv *Invocation, args map[string]any) (map[string]any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection, equivalent to util.CreateSchema(structType).
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(inv *Invocation, args map[string]any) (map[string]any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function.
func (t *FunctionTool) Call(inv *Invocation, args map[string]any) (map[string]any, error) {
	logger := inv.Logger
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "call_id", inv.CallID)

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(inv, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
