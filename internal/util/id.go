package util

import "github.com/google/uuid"

// NewID returns a random opaque identifier for sessions, tasks and tool-call
// correlation.
func NewID() string {
	return uuid.NewString()
}

// NewSessionID returns a fresh session token in the externally visible
// "session-<uuid>" form.
func NewSessionID() string {
	return "session-" + uuid.NewString()
}
