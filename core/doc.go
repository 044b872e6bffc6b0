// Package core defines the shared data model of AgentHub: agent definitions,
// tool declarations and invocation results, conversation turns and sessions,
// context packages used for agent-to-agent delegation, and the durable
// per-agent work state (status snapshot + work log).
//
// The package is intentionally dependency-light; behavior lives in the
// engine, tool, workdocs and history packages.
package core
