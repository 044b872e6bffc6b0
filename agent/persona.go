package agent

import (
	"fmt"
	"strings"
)

// Persona renders the agent's static identity and operating directives into
// the prompt prefix the orchestrator sends as system instructions.
// resourceInventory is the rendered shared-resource block; empty when no
// resources are registered.
func (a *Agent) Persona(resourceInventory string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\n", a.def.Name)
	fmt.Fprintf(&b, "Role: %s\n", a.def.Role)
	if a.def.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", a.def.Tone)
	}
	if len(a.def.Keywords) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s\n", strings.Join(a.def.Keywords, ", "))
	}

	if a.def.Scope.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.def.Scope.Description)
	}
	if len(a.def.Scope.Responsibilities) > 0 {
		b.WriteString("\n## Responsibilities\n")
		for _, r := range a.def.Scope.Responsibilities {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	b.WriteString(`
## Operating directives
- Document your work: update your current status before finishing and log a work session for every completed task.
- Read your current status before acting and update it after meaningful progress.
- When you receive a context package, honor its instructions and expected output exactly.
- When delegating, always pass a complete context package so the receiving agent can act without re-deriving history.
- Tool failures are information: explain them or work around them, never pretend they succeeded.
`)

	if resourceInventory != "" {
		b.WriteString("\n")
		b.WriteString(resourceInventory)
	}

	return b.String()
}
