package bridge

import "context"

// Handler receives call events from a Client. A handler is registered at
// controller construction and unregistered at teardown; the Client must never
// invoke a handler after Unsubscribe returns.
type Handler interface {
	OnConnected()
	OnEnded()
	OnTranscript(speaker Speaker, text string)
	OnError(err error)
}

// StartRequest carries everything a provider needs to place an outbound call.
type StartRequest struct {
	PublicKey   string
	Destination string
	Agent       AgentSnapshot
}

// Client is the voice-provider transport boundary. One Client instance serves
// one call; the manager builds a fresh client per session.
type Client interface {
	Subscribe(h Handler)
	Unsubscribe(h Handler)
	Start(ctx context.Context, req StartRequest) error
	Stop(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
}

// ClientFactory builds a new Client for a single call session.
type ClientFactory func(ctx context.Context) (Client, error)
