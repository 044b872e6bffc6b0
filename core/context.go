package core

import (
	"fmt"
	"time"
)

// ContextPackage is the structured hand-off payload a delegating agent sends
// alongside a sub-task so the receiving agent can act without re-deriving
// history. Packages are constructed once per delegation and never mutated;
// the receiving agent consumes one exactly once while building its prompt.
type ContextPackage struct {
	TaskID          string         `json:"task_id"`
	TaskDescription string         `json:"task_description"`
	CreatedAt       time.Time      `json:"created_at"`
	TargetAgent     string         `json:"target_agent"`
	GlobalContext   map[string]any `json:"global_context"`
	Instructions    map[string]any `json:"instructions"`
	RelatedInfo     map[string]any `json:"related_info"`
	ExpectedOutput  map[string]any `json:"expected_output"`
	Collaboration   map[string]any `json:"collaboration,omitempty"`
}

// NewContextPackage builds a delegation package. TargetAgent and Instructions
// are required; the remaining mappings default to empty, never nil.
func NewContextPackage(
	targetAgent, taskID, taskDescription string,
	globalContext, instructions, relatedInfo, expectedOutput, collaboration map[string]any,
) (*ContextPackage, error) {
	if targetAgent == "" {
		return nil, fmt.Errorf("context package: target agent is required")
	}
	if len(instructions) == 0 {
		return nil, fmt.Errorf("context package: instructions are required")
	}
	return &ContextPackage{
		TaskID:          taskID,
		TaskDescription: taskDescription,
		CreatedAt:       time.Now(),
		TargetAgent:     targetAgent,
		GlobalContext:   orEmpty(globalContext),
		Instructions:    instructions,
		RelatedInfo:     orEmpty(relatedInfo),
		ExpectedOutput:  orEmpty(expectedOutput),
		Collaboration:   orEmpty(collaboration),
	}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// GlobalState holds the project-wide fields of the global context document.
type GlobalState struct {
	CurrentPhase      string   `json:"current_phase"`
	OverallProgress   string   `json:"overall_progress"`
	CriticalDeadlines []string `json:"critical_deadlines"`
	BlockingIssues    []string `json:"blocking_issues"`
}

// GlobalContext is the singleton project context document. Updates merge
// field-wise into Global and replace key-wise in AgentContexts; the document
// is read-modify-written as a whole, never replaced blindly.
type GlobalContext struct {
	Project       string                    `json:"project"`
	LastUpdated   time.Time                 `json:"last_updated"`
	Global        GlobalState               `json:"global_context"`
	AgentContexts map[string]map[string]any `json:"agent_contexts"`
}

// NewGlobalContext returns the first-use default document.
func NewGlobalContext(project string) *GlobalContext {
	return &GlobalContext{
		Project:     project,
		LastUpdated: time.Now(),
		Global: GlobalState{
			OverallProgress:   "0%",
			CriticalDeadlines: []string{},
			BlockingIssues:    []string{},
		},
		AgentContexts: map[string]map[string]any{},
	}
}

// GlobalContextUpdate carries a partial update. Zero-valued Global fields are
// left untouched; AgentContexts entries replace the stored entry for that
// agent id wholesale.
type GlobalContextUpdate struct {
	Global        GlobalStateUpdate         `json:"global_context,omitempty"`
	AgentContexts map[string]map[string]any `json:"agent_contexts,omitempty"`
}

// GlobalStateUpdate mirrors GlobalState with optional fields.
type GlobalStateUpdate struct {
	CurrentPhase      *string  `json:"current_phase,omitempty"`
	OverallProgress   *string  `json:"overall_progress,omitempty"`
	CriticalDeadlines []string `json:"critical_deadlines,omitempty"`
	BlockingIssues    []string `json:"blocking_issues,omitempty"`
}

// Apply merges an update into the document and bumps LastUpdated.
func (g *GlobalContext) Apply(u GlobalContextUpdate) {
	if u.Global.CurrentPhase != nil {
		g.Global.CurrentPhase = *u.Global.CurrentPhase
	}
	if u.Global.OverallProgress != nil {
		g.Global.OverallProgress = *u.Global.OverallProgress
	}
	if u.Global.CriticalDeadlines != nil {
		g.Global.CriticalDeadlines = u.Global.CriticalDeadlines
	}
	if u.Global.BlockingIssues != nil {
		g.Global.BlockingIssues = u.Global.BlockingIssues
	}
	if g.AgentContexts == nil {
		g.AgentContexts = map[string]map[string]any{}
	}
	for agentID, agentCtx := range u.AgentContexts {
		g.AgentContexts[agentID] = agentCtx
	}
	g.LastUpdated = time.Now()
}
