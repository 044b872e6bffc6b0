// Package server provides the HTTP front end over echo: agent invocation,
// status queries, session history replay, and dynamic agent registration.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nextnine/agenthub/agent"
	"github.com/nextnine/agenthub/config"
	"github.com/nextnine/agenthub/engine"
	"github.com/nextnine/agenthub/history"
	"github.com/nextnine/agenthub/logging"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

// Version is the service version reported by the banner endpoint.
const Version = "0.1.0"

// HandlerOptions carries the collaborators a Handler needs.
type HandlerOptions struct {
	AgentsFile *config.AgentsFile
	Store      history.Store
	Docs       *workdocs.Manager
	Registry   *tool.Registry
	Engine     *engine.Engine
	Deps       agent.ToolsetDeps
	Logger     logging.Logger
}

// Handler handles HTTP requests.
type Handler struct {
	agentsFile *config.AgentsFile
	store      history.Store
	docs       *workdocs.Manager
	registry   *tool.Registry
	engine     *engine.Engine
	deps       agent.ToolsetDeps
	logger     logging.Logger

	mu     sync.RWMutex
	agents map[string]*agent.Agent
}

// NewHandler builds runtime agents for every loaded definition and registers
// their toolsets. A definition whose toolset fails to register is skipped
// with a log line; startup continues with the remaining agents.
func NewHandler(opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	h := &Handler{
		agentsFile: opts.AgentsFile,
		store:      opts.Store,
		docs:       opts.Docs,
		registry:   opts.Registry,
		engine:     opts.Engine,
		deps:       opts.Deps,
		logger:     logger,
		agents:     make(map[string]*agent.Agent),
	}

	for _, def := range opts.AgentsFile.Definitions() {
		if !def.Enabled {
			logger.Info("server.agent_disabled", "agent", def.ID)
			continue
		}
		if err := h.activate(def.ID); err != nil {
			logger.Warn("server.agent_skipped", "agent", def.ID, "error", err.Error())
		}
	}

	return h
}

// activate builds the runtime agent for a loaded definition and registers its
// category toolset.
func (h *Handler) activate(agentID string) error {
	def, err := h.agentsFile.Get(agentID)
	if err != nil {
		return err
	}
	if err := agent.RegisterToolset(h.registry, def.ID, def.JobCategory, h.deps); err != nil {
		return fmt.Errorf("toolset for %s: %w", def.ID, err)
	}

	h.mu.Lock()
	h.agents[def.ID] = agent.New(def)
	h.mu.Unlock()
	return nil
}

func (h *Handler) agentByID(agentID string) (*agent.Agent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.agents[agentID]
	return a, ok
}

func (h *Handler) agentCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.agents)
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Banner)

	e.GET("/api/v1/agents", h.ListAgents)
	e.POST("/api/v1/agents", h.RegisterAgent)
	e.POST("/api/v1/agent/invoke", h.Invoke)
	e.GET("/api/v1/agent/:agent_id/status", h.AgentStatus)
	e.GET("/api/v1/sessions", h.ListSessions)
	e.GET("/api/v1/session/:session_id/history", h.SessionHistory)
}

// NewEcho builds the echo instance with the service middleware stack.
func NewEcho(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.Info("http.request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	h.RegisterRoutes(e)
	return e
}

// Banner returns the service banner.
func (h *Handler) Banner(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":       "agenthub",
		"version":       Version,
		"status":        "ok",
		"agents_loaded": h.agentCount(),
	})
}

func apiError(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}
