package core

// Scope describes what an agent is responsible for. Responsibilities are
// rendered as a bullet list into the agent's persona prompt.
type Scope struct {
	Description      string   `json:"description,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Integration is an opaque descriptor for an external system the agent may
// reference (productivity suites, ticketing, ...). AgentHub never calls these
// directly; they exist so tool contracts can name them.
type Integration struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Config map[string]string `json:"config,omitempty"`
}

// AgentDefinition is the static identity of an agent as loaded from the
// agents file. Definitions are immutable once loaded; dynamic registration
// adds new definitions but never mutates existing ones.
//
// JobCategory selects the agent-specific toolset via the registration table
// in the agent package. Unknown categories get an empty toolset and rely on
// the common tools only.
type AgentDefinition struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	Tone         string        `json:"tone"`
	Keywords     []string      `json:"keywords,omitempty"`
	JobCategory  string        `json:"job_category,omitempty"`
	Scope        Scope         `json:"scope,omitempty"`
	Enabled      bool          `json:"enabled"`
	Tools        []string      `json:"tools,omitempty"`
	Integrations []Integration `json:"integrations,omitempty"`
}

// Validate reports whether the definition carries the minimum identity
// required to build a working agent.
func (d AgentDefinition) Validate() error {
	if d.ID == "" {
		return &DefinitionError{Field: "id", Message: "agent id is required"}
	}
	if d.Name == "" {
		return &DefinitionError{Field: "name", Message: "agent name is required"}
	}
	if d.Role == "" {
		return &DefinitionError{Field: "role", Message: "agent role is required"}
	}
	return nil
}

// DefinitionError reports an invalid agent definition field.
type DefinitionError struct {
	Field   string
	Message string
}

func (e *DefinitionError) Error() string {
	return "invalid agent definition: " + e.Field + ": " + e.Message
}
