package bridge

import (
	"context"
	"time"
)

// Recording is the finished-call payload handed to the Sink. Destination is
// the number actually dialed, threaded through from the start request.
type Recording struct {
	CallID          string
	UserID          string
	Destination     string
	DurationSeconds int
	Transcript      []Utterance
	StartedAt       time.Time
	EndedAt         time.Time
}

// Sink persists finished calls. Saves are fire-and-forget from the session's
// point of view: a sink failure is logged and never resurfaces into the
// session lifecycle.
type Sink interface {
	SaveRecording(ctx context.Context, rec Recording) error
}

// ConfigResolver resolves a platform setting with a static fallback. It never
// fails; a missing key yields the fallback.
type ConfigResolver interface {
	Resolve(ctx context.Context, key, fallback string) string
}
