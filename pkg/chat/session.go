package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Config carries everything needed to construct a Session.
type Config struct {
	// Prompt is the assembled system prompt for a fresh session. It is
	// recorded for SaveChat even when History is adopted instead.
	Prompt string

	// DefaultMessage is an optional assistant greeting inserted once at
	// construction time. Empty means none.
	DefaultMessage string

	// Responder produces assistant replies. Required.
	Responder Responder

	// History, when non-empty, is adopted verbatim as the initial history
	// so a saved chat can resume where it left off. It must already
	// satisfy the ordering invariants; a missing leading system turn is
	// tolerated with a warning.
	History []Turn

	Logger zerolog.Logger
}

// Session owns one user-assistant dialogue and mediates every call to the
// inference responder. A Session is not safe for concurrent use; callers
// must serialize access to it.
type Session struct {
	prompt         string
	defaultMessage string
	responder      Responder
	history        []Turn
	prefixLen      int
	logger         zerolog.Logger
}

// NewSession constructs a Session. A fresh session seeds its history with
// the system prompt and, when set, the default greeting; a session resumed
// from cfg.History adopts those turns unchanged.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Responder == nil {
		return nil, fmt.Errorf("responder is required")
	}

	s := &Session{
		prompt:         cfg.Prompt,
		defaultMessage: cfg.DefaultMessage,
		responder:      cfg.Responder,
		logger:         cfg.Logger,
	}

	if len(cfg.History) > 0 {
		if cfg.History[0].Role != RoleSystem {
			s.logger.Warn().
				Str("role", string(cfg.History[0].Role)).
				Msg("Adopted history does not begin with a system turn")
		}
		s.history = append([]Turn(nil), cfg.History...)
	} else {
		s.history = []Turn{{Role: RoleSystem, Content: cfg.Prompt}}
		if cfg.DefaultMessage != "" {
			s.history = append(s.history, Turn{Role: RoleAssistant, Content: cfg.DefaultMessage})
		}
	}
	s.prefixLen = seedPrefixLen(s.history, s.defaultMessage)

	return s, nil
}

// Ask appends the user's message, obtains the assistant's reply over the
// full accumulated history, appends that reply, and returns it. On responder
// failure the already-appended user turn is kept and the cause is returned
// wrapped in *InferenceError; the session performs no retries.
func (s *Session) Ask(ctx context.Context, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", fmt.Errorf("empty user message: %w", ErrInvalidInput)
	}

	s.history = append(s.history, Turn{Role: RoleUser, Content: userMessage})

	reply, err := s.responder.Respond(ctx, s.History())
	if err != nil {
		return "", &InferenceError{Err: err}
	}

	s.history = append(s.history, Turn{Role: RoleAssistant, Content: reply})

	s.logger.Debug().
		Int("visible_turns", s.VisibleTurns()).
		Msg("Appended question and reply")

	return reply, nil
}

// RestartFromIndex truncates the history to the seed prefix plus the first
// index user-visible turns. Index 0 resets the session to its freshly
// constructed state. Valid indices are even, so the history still ends on an
// assistant reply, and at most VisibleTurns.
func (s *Session) RestartFromIndex(index int) error {
	switch {
	case index < 0:
		return fmt.Errorf("index %d is negative: %w", index, ErrInvalidIndex)
	case index%2 != 0:
		return fmt.Errorf("index %d does not end on an assistant turn: %w", index, ErrInvalidIndex)
	case index > s.VisibleTurns():
		return fmt.Errorf("index %d exceeds %d visible turns: %w", index, s.VisibleTurns(), ErrInvalidIndex)
	}

	s.history = s.history[:s.prefixLen+index]

	s.logger.Info().
		Int("index", index).
		Int("history_len", len(s.history)).
		Msg("Restarted conversation from index")

	return nil
}

// AppendTurn appends a turn without consulting the responder, for injecting
// notices or transcripts into the history. User questions that expect a
// reply should go through Ask instead.
func (s *Session) AppendTurn(role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("empty content: %w", ErrInvalidInput)
	}

	s.history = append(s.history, Turn{Role: role, Content: content})
	return nil
}

// SaveChat captures the session state as a Snapshot sufficient to
// reconstruct an equivalent session later. It does not mutate the session,
// and the snapshot shares no memory with it.
func (s *Session) SaveChat() Snapshot {
	return Snapshot{
		Prompt:         s.prompt,
		DefaultMessage: s.defaultMessage,
		History:        s.History(),
	}
}

// History returns a copy of the full conversation history, including the
// system and default-greeting turns.
func (s *Session) History() []Turn {
	return append([]Turn(nil), s.history...)
}

// VisibleTurns returns the number of turns after the seed prefix, the range
// addressed by RestartFromIndex.
func (s *Session) VisibleTurns() int {
	return len(s.history) - s.prefixLen
}

// Prompt returns the system prompt the session was constructed with.
func (s *Session) Prompt() string { return s.prompt }

// DefaultMessage returns the default greeting, empty when none was set.
func (s *Session) DefaultMessage() string { return s.defaultMessage }

// seedPrefixLen reports how many leading turns form the seed prefix: the
// system turn plus the default greeting when one is configured.
func seedPrefixLen(history []Turn, defaultMessage string) int {
	if len(history) == 0 || history[0].Role != RoleSystem {
		return 0
	}
	if defaultMessage != "" && len(history) > 1 && history[1].Role == RoleAssistant {
		return 2
	}
	return 1
}
