// Package chat implements a single question-and-answer conversation session
// over an opaque inference responder.
//
// Invariants:
// - History starts with the system-prompt turn, then the optional default greeting.
// - User/assistant turns alternate in insertion order, user first.
// - Turns are immutable once appended; only Ask, AppendTurn, and RestartFromIndex mutate history.
// - The session owns its history exclusively; responders receive a copy.
//
// Usage:
//
//	sess, _ := chat.NewSession(chat.Config{Prompt: "You are ...", Responder: r})
//	reply, _ := sess.Ask(ctx, "What is X?")
//	_ = reply
package chat
