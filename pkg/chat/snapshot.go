package chat

import "github.com/rs/zerolog"

// Snapshot is the persistable state of a Session: the system prompt, the
// optional default greeting, and the full ordered history. Where and how a
// snapshot is stored is the caller's concern.
type Snapshot struct {
	Prompt         string `json:"prompt"`
	DefaultMessage string `json:"default_message,omitempty"`
	History        []Turn `json:"history"`
}

// NewSessionFromSnapshot reconstructs a Session from a previously saved
// snapshot and a freshly supplied responder.
func NewSessionFromSnapshot(snap Snapshot, responder Responder, logger zerolog.Logger) (*Session, error) {
	return NewSession(Config{
		Prompt:         snap.Prompt,
		DefaultMessage: snap.DefaultMessage,
		Responder:      responder,
		History:        snap.History,
		Logger:         logger,
	})
}
