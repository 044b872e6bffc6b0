package core

// Tool invocation statuses. Failures are data at the tool boundary: a handler
// that cannot do its job returns a result with StatusError, it never raises
// past the registry.
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusNotImplemented = "not_implemented"
)

// ToolDeclaration advertises a callable capability to the model backend.
// Parameters is a minimal JSON-Schema object (type/properties/required).
type ToolDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolRequest is one tool invocation requested by the model backend within a
// turn. ID correlates the request with its result across the round trip.
type ToolRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of one tool invocation. Always produced, even on
// failure.
type ToolResult struct {
	Status  string         `json:"status"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ErrorResult builds a StatusError result carrying a message.
func ErrorResult(message string) ToolResult {
	return ToolResult{Status: StatusError, Payload: map[string]any{"message": message}}
}

// NotImplementedResult builds the result returned for unresolved tool names.
func NotImplementedResult(tool string) ToolResult {
	return ToolResult{Status: StatusNotImplemented, Payload: map[string]any{"tool": tool}}
}

// SuccessResult builds a StatusSuccess result from a payload map. A nil
// payload is normalized to an empty map so callers can always range over it.
func SuccessResult(payload map[string]any) ToolResult {
	if payload == nil {
		payload = map[string]any{}
	}
	return ToolResult{Status: StatusSuccess, Payload: payload}
}
