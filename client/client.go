// Package client is the HTTP client for the invocation API. The master
// agent's delegation tool uses it for agent-to-agent sub-calls; it also works
// as a standalone SDK against a remote deployment.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nextnine/agenthub/core"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request end to end. Delegated invocations run a
	// full turn loop on the far side, so this should comfortably exceed the
	// callee's model latency. Defaults to 120s.
	Timeout time.Duration
	// RetryCount applies to transport-level failures only; invocation
	// endpoints are not idempotent enough to retry on 5xx. Defaults to 2.
	RetryCount int
}

// Client talks to an agenthub server.
type Client struct {
	http *resty.Client
}

// New builds a Client for the given base URL.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	} else if opts.RetryCount == 0 {
		opts.RetryCount = 2
	}

	http := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http}
}

// InvokeRequest is the invocation payload.
type InvokeRequest struct {
	AgentID        string               `json:"agent_id"`
	Message        string               `json:"message"`
	SessionID      string               `json:"session_id,omitempty"`
	ContextPackage *core.ContextPackage `json:"context_package,omitempty"`
}

// InvokeResponse is the invocation reply.
type InvokeResponse struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Status    string `json:"status"`
}

type apiError struct {
	Error string `json:"error"`
}

// Invoke sends a message to an agent and waits for the full turn to resolve.
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error) {
	var out InvokeResponse
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/agent/invoke")
	if err != nil {
		return nil, fmt.Errorf("invoke agent %s: %w", req.AgentID, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("invoke agent %s: %s (status %d)", req.AgentID, apiErr.Error, resp.StatusCode())
		}
		return nil, fmt.Errorf("invoke agent %s: unexpected status %d", req.AgentID, resp.StatusCode())
	}
	return &out, nil
}

// AgentStatus is the per-agent status query reply.
type AgentStatus struct {
	AgentID        string         `json:"agent_id"`
	CurrentStatus  string         `json:"current_status"`
	WorkLogSummary map[string]any `json:"work_log_summary,omitempty"`
	LastUpdated    string         `json:"last_updated,omitempty"`
}

// Status fetches an agent's persisted status snapshot and work-log summary.
func (c *Client) Status(ctx context.Context, agentID string) (*AgentStatus, error) {
	var out AgentStatus
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/v1/agent/" + agentID + "/status")
	if err != nil {
		return nil, fmt.Errorf("agent status %s: %w", agentID, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("agent status %s: %s (status %d)", agentID, apiErr.Error, resp.StatusCode())
		}
		return nil, fmt.Errorf("agent status %s: unexpected status %d", agentID, resp.StatusCode())
	}
	return &out, nil
}

// ListAgents returns the definitions loaded on the server.
func (c *Client) ListAgents(ctx context.Context) ([]core.AgentDefinition, error) {
	var out struct {
		Agents []core.AgentDefinition `json:"agents"`
	}
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/v1/agents")
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list agents: unexpected status %d", resp.StatusCode())
	}
	return out.Agents, nil
}
