// Package agent turns static AgentDefinitions into runtime agents: a persona
// prompt builder, an in-memory conversation record, and the registration
// table mapping job categories to their agent-specific toolsets.
package agent

import (
	"sync"

	"github.com/nextnine/agenthub/core"
)

// maxRecordTurns bounds the in-memory conversation record. Durable history
// lives in the history store; this record only feeds prompt continuity within
// a process lifetime.
const maxRecordTurns = 50

// Agent is the runtime object for one loaded definition. Safe for concurrent
// invocations.
type Agent struct {
	def core.AgentDefinition

	mu     sync.Mutex
	record []core.ConversationTurn
}

// New builds an Agent from a validated definition.
func New(def core.AgentDefinition) *Agent {
	return &Agent{def: def}
}

// Definition returns the immutable definition this agent was built from.
func (a *Agent) Definition() core.AgentDefinition { return a.def }

// ID returns the agent id.
func (a *Agent) ID() string { return a.def.ID }

// Name returns the display name.
func (a *Agent) Name() string { return a.def.Name }

// RecordExchange appends the user message and the agent's answer to the
// bounded in-memory record. Exactly two entries per completed invocation.
func (a *Agent) RecordExchange(userTurn, agentTurn core.ConversationTurn) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.record = append(a.record, userTurn, agentTurn)
	if len(a.record) > maxRecordTurns {
		a.record = a.record[len(a.record)-maxRecordTurns:]
	}
}

// Record returns a copy of the in-memory conversation record.
func (a *Agent) Record() []core.ConversationTurn {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.ConversationTurn, len(a.record))
	copy(out, a.record)
	return out
}
