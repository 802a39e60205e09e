package bridge

import "errors"

// Sentinel errors for call session failures. Callers branch with errors.Is;
// the HTTP layer maps them to status codes.
var (
	// ErrValidation covers malformed start requests and operations that are
	// illegal in the session's current state.
	ErrValidation = errors.New("bridge: invalid request")

	// ErrConfiguration means the platform is missing required provider
	// configuration (for example no public key anywhere in the chain).
	ErrConfiguration = errors.New("bridge: missing configuration")

	// ErrProvider wraps failures reported by the voice provider transport.
	ErrProvider = errors.New("bridge: provider failure")

	// ErrPersistence wraps storage failures encountered while starting or
	// accounting a session.
	ErrPersistence = errors.New("bridge: persistence failure")

	// ErrQuotaExceeded means the user has no call minutes left.
	ErrQuotaExceeded = errors.New("bridge: call minutes quota exceeded")

	// ErrSessionActive means the user already has a live session, locally or
	// on another node.
	ErrSessionActive = errors.New("bridge: session already active")
)
