package core

import (
	"fmt"
	"strings"
	"time"
)

// AgentWorkStatus is the per-agent working snapshot. It is overwritten
// wholesale on every update; there is no merge.
type AgentWorkStatus struct {
	InProgress     []string  `json:"in_progress"`
	Waiting        []string  `json:"waiting"`
	BlockingIssues []string  `json:"blocking_issues"`
	NextSteps      []string  `json:"next_steps"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Render produces the human-readable markdown snapshot persisted for the
// agent and embedded into its prompts.
func (s AgentWorkStatus) Render(agentName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s current status\n\n", agentName)
	fmt.Fprintf(&b, "**Last updated**: %s\n\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## In progress\n")
	for _, task := range s.InProgress {
		fmt.Fprintf(&b, "- [ ] %s\n", task)
	}
	b.WriteString("\n## Waiting\n")
	for i, task := range s.Waiting {
		fmt.Fprintf(&b, "%d. %s\n", i+1, task)
	}
	b.WriteString("\n## Blocking issues\n")
	for _, issue := range s.BlockingIssues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	b.WriteString("\n## Next steps\n")
	for i, step := range s.NextSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// WorkSession is one appended work-log entry. Optional fields are omitted
// when empty so the persisted log stays compact.
type WorkSession struct {
	SessionID       string           `json:"session_id"`
	StartedAt       time.Time        `json:"started_at"`
	TasksCompleted  []string         `json:"tasks_completed"`
	ContextReceived map[string]any   `json:"context_received,omitempty"`
	DelegatedTo     []map[string]any `json:"delegated_to,omitempty"`
	DecisionsMade   []string         `json:"decisions_made,omitempty"`
	FilesModified   []string         `json:"files_modified,omitempty"`
}

// WorkLog is the append-only sequence of work sessions for one agent. Only
// LastUpdated changes after a session has been appended.
type WorkLog struct {
	AgentID     string        `json:"agent_id"`
	LastUpdated time.Time     `json:"last_updated"`
	Sessions    []WorkSession `json:"work_sessions"`
}
