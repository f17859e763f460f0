// Package transcript persists chat snapshots as JSON files and loads them
// back, validating the document shape before a session is rebuilt from it.
//
// Invariants:
// - Files are written atomically with 0600 permissions.
// - Load rejects documents that fail schema validation.
// - Load rejects a non-empty history whose first turn is not a system turn.
//
// Usage:
//
//	path, _ := transcript.Save(dir, sess.SaveChat())
//	snap, _ := transcript.Load(path)
//	_ = snap
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"docqna/pkg/chat"
)

// Document is the on-disk transcript: the snapshot 3-tuple plus an envelope
// identifying when and as what it was saved.
type Document struct {
	ID             string      `json:"id"`
	SavedAt        time.Time   `json:"saved_at"`
	Prompt         string      `json:"prompt"`
	DefaultMessage string      `json:"default_message,omitempty"`
	History        []chat.Turn `json:"history"`
}

// Save writes snap to path atomically and returns the path. The parent
// directory is created when missing.
func Save(path string, snap chat.Snapshot) error {
	doc := Document{
		ID:             uuid.New().String(),
		SavedAt:        time.Now().UTC(),
		Prompt:         snap.Prompt,
		DefaultMessage: snap.DefaultMessage,
		History:        snap.History,
	}
	if doc.History == nil {
		doc.History = []chat.Turn{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".transcript-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set transcript permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store transcript: %w", err)
	}
	return nil
}

// Load reads, validates, and unmarshals a transcript into a snapshot a new
// session can adopt.
func Load(path string) (chat.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chat.Snapshot{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return chat.Snapshot{}, fmt.Errorf("invalid transcript %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return chat.Snapshot{}, fmt.Errorf("failed to parse transcript: %w", err)
	}

	if len(doc.History) > 0 && doc.History[0].Role != chat.RoleSystem {
		return chat.Snapshot{}, fmt.Errorf("transcript %s: history does not begin with a system turn", path)
	}

	return chat.Snapshot{
		Prompt:         doc.Prompt,
		DefaultMessage: doc.DefaultMessage,
		History:        doc.History,
	}, nil
}

// DefaultFilename returns a fresh transcript filename for saves that do not
// name one.
func DefaultFilename() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate transcript name: %w", err)
	}
	return fmt.Sprintf("chat-%s.json", id), nil
}
