// Package model defines the vendor-neutral contract for language-model
// backends. A backend receives instructions, prior messages and tool
// declarations and answers with text, tool-call requests, or both. Provider
// adapters live in the anthropic and openai subpackages.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/nextnine/agenthub/core"
)

// ToolCall is a function call request surfaced by a model backend. Arguments
// is the raw JSON argument string as produced by the provider; the engine
// deserializes it at dispatch time.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResponse carries one completed tool result back to the backend.
// Content is the JSON-serialized core.ToolResult.
type ToolResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Message is one normalized conversation entry sent to the backend.
//
// Role "assistant" messages may carry ToolCalls; role "tool" messages carry
// ToolResponses; everything else is plain text.
type Message struct {
	Role          string         `json:"role"`
	Text          string         `json:"text,omitempty"`
	ToolCalls     []ToolCall     `json:"tool_calls,omitempty"`
	ToolResponses []ToolResponse `json:"tool_responses,omitempty"`
}

// Request captures the normalized model input produced by the engine.
type Request struct {
	Instructions string                 `json:"instructions"`
	Messages     []Message              `json:"messages"`
	Tools        []core.ToolDeclaration `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the backend's answer for one model call. A response with an
// empty ToolCalls slice terminates the turn loop.
type Response struct {
	Text         string      `json:"text"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the engine needs to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests.
//
// Two modes compose: Enqueue scripts exact responses consumed in FIFO order
// (tool-call rounds included); AddResponse maps the latest user text to a
// canned completion when the script is exhausted.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []*Response
	responses map[string]string
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input text.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// Enqueue appends a scripted response consumed before any canned completion.
func (m *MockModel) Enqueue(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// Requests returns a copy of every request seen, in call order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		return resp, nil
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	text := m.responses[last.Text]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", last.Text)
	}
	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
