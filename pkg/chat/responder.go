package chat

import "context"

// Responder produces the assistant's reply for an ordered conversation
// history. The session passes a copy of its history, so implementations may
// reorder or annotate the slice freely without corrupting the session.
// Respond blocks until the reply is available or ctx is done.
type Responder interface {
	Respond(ctx context.Context, history []Turn) (string, error)
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(ctx context.Context, history []Turn) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, history []Turn) (string, error) {
	return f(ctx, history)
}
