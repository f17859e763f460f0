package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedResponder(reply string) Responder {
	return ResponderFunc(func(ctx context.Context, history []Turn) (string, error) {
		return reply, nil
	})
}

func newTestSession(t *testing.T, prompt, defaultMessage string, responder Responder) *Session {
	t.Helper()

	sess, err := NewSession(Config{
		Prompt:         prompt,
		DefaultMessage: defaultMessage,
		Responder:      responder,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return sess
}

func TestNewSessionSeedsHistory(t *testing.T) {
	tests := []struct {
		name           string
		prompt         string
		defaultMessage string
		want           []Turn
	}{
		{
			name:           "prompt and default greeting",
			prompt:         "P",
			defaultMessage: "Hi",
			want: []Turn{
				{Role: RoleSystem, Content: "P"},
				{Role: RoleAssistant, Content: "Hi"},
			},
		},
		{
			name:   "prompt only",
			prompt: "P",
			want: []Turn{
				{Role: RoleSystem, Content: "P"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, tt.prompt, tt.defaultMessage, fixedResponder("ok"))

			assert.Equal(t, tt.want, sess.History())
			assert.Equal(t, 0, sess.VisibleTurns())
			assert.Equal(t, tt.prompt, sess.Prompt())
			assert.Equal(t, tt.defaultMessage, sess.DefaultMessage())
		})
	}
}

func TestNewSessionRequiresResponder(t *testing.T) {
	_, err := NewSession(Config{Prompt: "P", Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "responder is required")
}

func TestNewSessionAdoptsHistoryVerbatim(t *testing.T) {
	history := []Turn{
		{Role: RoleSystem, Content: "P"},
		{Role: RoleAssistant, Content: "Hi"},
		{Role: RoleUser, Content: "Q1"},
		{Role: RoleAssistant, Content: "A1"},
	}

	sess, err := NewSession(Config{
		Prompt:         "P",
		DefaultMessage: "Hi",
		Responder:      fixedResponder("ok"),
		History:        history,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, history, sess.History())
	assert.Equal(t, 2, sess.VisibleTurns())
}

func TestNewSessionToleratesMissingSystemTurn(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Content: "Q1"},
		{Role: RoleAssistant, Content: "A1"},
	}

	sess, err := NewSession(Config{
		Responder: fixedResponder("ok"),
		History:   history,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, history, sess.History())
	assert.Equal(t, 2, sess.VisibleTurns())
}

func TestAskAppendsQuestionAndReply(t *testing.T) {
	sess := newTestSession(t, "P", "Hi", fixedResponder("X is Y"))

	reply, err := sess.Ask(context.Background(), "What is X?")
	require.NoError(t, err)
	assert.Equal(t, "X is Y", reply)

	want := []Turn{
		{Role: RoleSystem, Content: "P"},
		{Role: RoleAssistant, Content: "Hi"},
		{Role: RoleUser, Content: "What is X?"},
		{Role: RoleAssistant, Content: "X is Y"},
	}
	assert.Equal(t, want, sess.History())
	assert.Equal(t, 2, sess.VisibleTurns())
}

func TestAskRejectsEmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "whitespace only", input: "  \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, "P", "Hi", fixedResponder("ok"))
			before := sess.History()

			_, err := sess.Ask(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, before, sess.History())
		})
	}
}

func TestAskPassesFullHistoryToResponder(t *testing.T) {
	var seen []Turn
	responder := ResponderFunc(func(ctx context.Context, history []Turn) (string, error) {
		seen = history
		return "A1", nil
	})

	sess := newTestSession(t, "P", "Hi", responder)

	_, err := sess.Ask(context.Background(), "Q1")
	require.NoError(t, err)

	want := []Turn{
		{Role: RoleSystem, Content: "P"},
		{Role: RoleAssistant, Content: "Hi"},
		{Role: RoleUser, Content: "Q1"},
	}
	assert.Equal(t, want, seen)

	// The responder gets a copy; scribbling on it must not reach the
	// session's own history.
	seen[0].Content = "corrupted"
	assert.Equal(t, "P", sess.History()[0].Content)
}

func TestAskKeepsUserTurnOnResponderFailure(t *testing.T) {
	cause := errors.New("upstream unavailable")
	responder := ResponderFunc(func(ctx context.Context, history []Turn) (string, error) {
		return "", cause
	})

	sess := newTestSession(t, "P", "Hi", responder)

	_, err := sess.Ask(context.Background(), "Q1")
	require.Error(t, err)

	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, cause, infErr.Unwrap())
	assert.ErrorIs(t, err, cause)

	want := []Turn{
		{Role: RoleSystem, Content: "P"},
		{Role: RoleAssistant, Content: "Hi"},
		{Role: RoleUser, Content: "Q1"},
	}
	assert.Equal(t, want, sess.History())
}

func askPair(t *testing.T, sess *Session, question string) {
	t.Helper()
	_, err := sess.Ask(context.Background(), question)
	require.NoError(t, err)
}

func TestRestartFromIndexTruncatesHistory(t *testing.T) {
	replies := []string{"A1", "A2"}
	responder := ResponderFunc(func(ctx context.Context, history []Turn) (string, error) {
		reply := replies[0]
		replies = replies[1:]
		return reply, nil
	})

	sess := newTestSession(t, "P", "Hi", responder)
	askPair(t, sess, "Q1")
	askPair(t, sess, "Q2")
	require.Equal(t, 6, len(sess.History()))

	require.NoError(t, sess.RestartFromIndex(2))

	want := []Turn{
		{Role: RoleSystem, Content: "P"},
		{Role: RoleAssistant, Content: "Hi"},
		{Role: RoleUser, Content: "Q1"},
		{Role: RoleAssistant, Content: "A1"},
	}
	assert.Equal(t, want, sess.History())
	assert.Equal(t, 2, sess.VisibleTurns())
}

func TestRestartFromIndexZeroResetsToSeed(t *testing.T) {
	sess := newTestSession(t, "P", "Hi", fixedResponder("A"))
	seed := sess.History()

	askPair(t, sess, "Q1")
	askPair(t, sess, "Q2")

	require.NoError(t, sess.RestartFromIndex(0))
	assert.Equal(t, seed, sess.History())
}

func TestRestartFromIndexLength(t *testing.T) {
	tests := []struct {
		name           string
		defaultMessage string
		index          int
		wantLen        int
	}{
		{name: "with greeting index 0", defaultMessage: "Hi", index: 0, wantLen: 2},
		{name: "with greeting index 2", defaultMessage: "Hi", index: 2, wantLen: 4},
		{name: "with greeting index 4", defaultMessage: "Hi", index: 4, wantLen: 6},
		{name: "without greeting index 0", index: 0, wantLen: 1},
		{name: "without greeting index 2", index: 2, wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, "P", tt.defaultMessage, fixedResponder("A"))
			askPair(t, sess, "Q1")
			askPair(t, sess, "Q2")

			require.NoError(t, sess.RestartFromIndex(tt.index))
			assert.Len(t, sess.History(), tt.wantLen)
		})
	}
}

func TestRestartFromIndexRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{name: "negative", index: -1},
		{name: "odd", index: 1},
		{name: "odd beyond first pair", index: 3},
		{name: "beyond visible turns", index: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, "P", "Hi", fixedResponder("A"))
			askPair(t, sess, "Q1")
			askPair(t, sess, "Q2")
			before := sess.History()

			err := sess.RestartFromIndex(tt.index)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidIndex)
			assert.Equal(t, before, sess.History())
		})
	}
}

func TestAppendTurn(t *testing.T) {
	sess := newTestSession(t, "P", "", fixedResponder("A"))

	require.NoError(t, sess.AppendTurn(RoleAssistant, "Heads up."))
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "Heads up."}, sess.History()[1])

	err := sess.AppendTurn(Role("moderator"), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = sess.AppendTurn(RoleUser, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveChatRoundTrip(t *testing.T) {
	sess := newTestSession(t, "P", "Hi", fixedResponder("A"))
	askPair(t, sess, "Q1")
	askPair(t, sess, "Q2")

	snap := sess.SaveChat()
	assert.Equal(t, "P", snap.Prompt)
	assert.Equal(t, "Hi", snap.DefaultMessage)
	assert.Equal(t, sess.History(), snap.History)

	restored, err := NewSessionFromSnapshot(snap, fixedResponder("B"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, sess.History(), restored.History())
	assert.Equal(t, sess.VisibleTurns(), restored.VisibleTurns())

	// Continuing the restored session behaves like the original would.
	reply, err := restored.Ask(context.Background(), "Q3")
	require.NoError(t, err)
	assert.Equal(t, "B", reply)
	assert.Len(t, restored.History(), 8)
}

func TestSaveChatDoesNotAliasHistory(t *testing.T) {
	sess := newTestSession(t, "P", "Hi", fixedResponder("A"))
	askPair(t, sess, "Q1")

	snap := sess.SaveChat()
	snap.History[0].Content = "corrupted"

	assert.Equal(t, "P", sess.History()[0].Content)
}

func TestHistoryReturnsCopy(t *testing.T) {
	sess := newTestSession(t, "P", "Hi", fixedResponder("A"))

	got := sess.History()
	got[0].Content = "corrupted"

	assert.Equal(t, "P", sess.History()[0].Content)
}
