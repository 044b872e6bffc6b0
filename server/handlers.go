package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nextnine/agenthub/config"
	"github.com/nextnine/agenthub/core"
	"github.com/nextnine/agenthub/engine"
	"github.com/nextnine/agenthub/history"
	"github.com/nextnine/agenthub/internal/util"
)

type invokeRequest struct {
	AgentID        string               `json:"agent_id"`
	Message        string               `json:"message"`
	SessionID      string               `json:"session_id,omitempty"`
	ContextPackage *core.ContextPackage `json:"context_package,omitempty"`
}

type invokeResponse struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Status    string `json:"status"`
}

// Invoke runs one full turn against the named agent.
func (h *Handler) Invoke(c echo.Context) error {
	var req invokeRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.AgentID == "" || req.Message == "" {
		return apiError(c, http.StatusBadRequest, "agent_id and message are required")
	}

	a, ok := h.agentByID(req.AgentID)
	if !ok {
		return apiError(c, http.StatusNotFound, "agent not found: "+req.AgentID)
	}
	if req.ContextPackage != nil && req.ContextPackage.TargetAgent != req.AgentID {
		return apiError(c, http.StatusBadRequest,
			"context package targets "+req.ContextPackage.TargetAgent+", not "+req.AgentID)
	}

	ctx := c.Request().Context()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = util.NewSessionID()
	} else {
		// An existing session stays bound to its first agent for life.
		session, err := h.store.GetSessionInfo(ctx, sessionID)
		if err != nil {
			return apiError(c, http.StatusInternalServerError, "session lookup failed")
		}
		if session != nil && session.AgentID != req.AgentID {
			return apiError(c, http.StatusBadRequest,
				"session "+sessionID+" belongs to agent "+session.AgentID)
		}
	}

	turns, err := h.store.LoadHistory(ctx, sessionID, history.DefaultHistoryLimit)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "history load failed")
	}

	answer := h.engine.Run(ctx, engine.Invocation{
		Agent:          a,
		SessionID:      sessionID,
		Message:        req.Message,
		ContextPackage: req.ContextPackage,
		History:        turns,
	})

	// Losing history would break the delegation contract, so persistence
	// failures fail the request even though an answer exists.
	if err := h.store.SaveMessage(ctx, sessionID, req.AgentID, core.RoleUser, req.Message); err != nil {
		h.logger.Error("server.persist_failed", "session", sessionID, "error", err.Error())
		return apiError(c, http.StatusInternalServerError, "failed to persist conversation")
	}
	if err := h.store.SaveMessage(ctx, sessionID, req.AgentID, core.RoleAgent, answer); err != nil {
		h.logger.Error("server.persist_failed", "session", sessionID, "error", err.Error())
		return apiError(c, http.StatusInternalServerError, "failed to persist conversation")
	}

	return c.JSON(http.StatusOK, invokeResponse{
		AgentID:   req.AgentID,
		AgentName: a.Name(),
		SessionID: sessionID,
		Response:  answer,
		Status:    "success",
	})
}

// ListAgents lists loaded agent definitions.
func (h *Handler) ListAgents(c echo.Context) error {
	defs := h.agentsFile.Definitions()
	return c.JSON(http.StatusOK, map[string]any{
		"agents": defs,
		"count":  len(defs),
	})
}

// RegisterAgent adds a new agent definition at runtime and persists it.
func (h *Handler) RegisterAgent(c echo.Context) error {
	var def core.AgentDefinition
	if err := c.Bind(&def); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.agentsFile.Add(def); err != nil {
		var defErr *core.DefinitionError
		switch {
		case errors.Is(err, config.ErrAgentExists):
			return apiError(c, http.StatusConflict, err.Error())
		case errors.As(err, &defErr):
			return apiError(c, http.StatusBadRequest, err.Error())
		default:
			return apiError(c, http.StatusInternalServerError, "failed to persist agent")
		}
	}

	if err := h.activate(def.ID); err != nil {
		h.logger.Error("server.activation_failed", "agent", def.ID, "error", err.Error())
		return apiError(c, http.StatusInternalServerError, "agent persisted but activation failed")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"agent_id": def.ID,
		"status":   "registered",
	})
}

// AgentStatus returns the persisted status snapshot and a work-log summary.
func (h *Handler) AgentStatus(c echo.Context) error {
	agentID := c.Param("agent_id")
	if _, ok := h.agentByID(agentID); !ok {
		return apiError(c, http.StatusNotFound, "agent not found: "+agentID)
	}

	ac, err := h.docs.LoadAgentContext(agentID)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "failed to load agent context")
	}

	summary := map[string]any{"session_count": 0}
	if ac.WorkLog != nil {
		summary["session_count"] = len(ac.WorkLog.Sessions)
		if n := len(ac.WorkLog.Sessions); n > 0 {
			summary["last_session_id"] = ac.WorkLog.Sessions[n-1].SessionID
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"agent_id":         agentID,
		"current_status":   ac.CurrentStatus,
		"work_log_summary": summary,
		"last_updated":     ac.LastUpdated,
	})
}

// ListSessions lists sessions, optionally filtered by owning agent.
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.store.ListSessions(c.Request().Context(), c.QueryParam("agent_id"))
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "failed to list sessions")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// SessionHistory replays a session's turns oldest-to-newest.
func (h *Handler) SessionHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	session, err := h.store.GetSessionInfo(ctx, sessionID)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "session lookup failed")
	}
	if session == nil {
		return apiError(c, http.StatusNotFound, "session not found: "+sessionID)
	}

	limit := history.DefaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	turns, err := h.store.LoadHistory(ctx, sessionID, limit)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "failed to load history")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session": session,
		"history": turns,
		"count":   len(turns),
	})
}
