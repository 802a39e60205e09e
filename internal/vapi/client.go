// Package vapi speaks the Vapi realtime control protocol over a websocket.
// One Client serves one call; the bridge manager builds a fresh client per
// session.
package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
)

// Config controls how the client reaches the provider.
type Config struct {
	// URL is the websocket endpoint, e.g. wss://api.vapi.ai/ws.
	URL string
	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration
	// WriteTimeout bounds each control frame write.
	WriteTimeout time.Duration

	Log *slog.Logger
}

func (c Config) withDefaults() Config {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 10 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 5 * time.Second
	}
	if out.Log == nil {
		out.Log = slog.Default()
	}
	return out
}

// Client implements bridge.Client. It owns the socket and its read loop;
// writes are serialized through a mutex because gorilla conns allow only one
// concurrent writer.
type Client struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	handler bridge.Handler
	conn    *websocket.Conn
	stopped bool

	writeMu sync.Mutex
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{cfg: cfg, log: cfg.Log.With(slog.String("component", "vapi"))}
}

// Factory returns a bridge.ClientFactory building one Client per call.
func Factory(cfg Config) bridge.ClientFactory {
	return func(ctx context.Context) (bridge.Client, error) {
		if cfg.URL == "" {
			return nil, errors.New("vapi: websocket url not configured")
		}
		return NewClient(cfg), nil
	}
}

func (c *Client) Subscribe(h bridge.Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Client) Unsubscribe(h bridge.Handler) {
	c.mu.Lock()
	if c.handler == h {
		c.handler = nil
	}
	c.mu.Unlock()
}

// envelope is the wire frame in both directions.
type envelope struct {
	Type string `json:"type"`

	// Outbound start fields.
	PublicKey   string     `json:"publicKey,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Assistant   *assistant `json:"assistant,omitempty"`

	// Outbound mute control.
	Muted *bool `json:"muted,omitempty"`

	// Inbound payloads.
	Message *transcriptMessage `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type assistant struct {
	FirstMessage string         `json:"firstMessage"`
	Model        assistantModel `json:"model"`
	Voice        assistantVoice `json:"voice"`
}

type assistantModel struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Messages []modelMessage `json:"messages"`
}

type modelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type assistantVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type transcriptMessage struct {
	Type           string `json:"type"`
	Role           string `json:"role"`
	TranscriptType string `json:"transcriptType,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

// defaultModelFor picks the provider's default chat model when the agent does
// not pin one.
func defaultModelFor(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-3-5-sonnet-20240620"
	case "groq":
		return "llama3-8b-8192"
	default:
		return "gpt-4o"
	}
}

// Start dials the provider, sends the call start frame and begins reading
// events. It returns once the start frame is on the wire; call progress
// arrives through the subscribed handler.
func (c *Client) Start(ctx context.Context, req bridge.StartRequest) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return errors.New("vapi: client already started")
	}
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("vapi: dial: %w", err)
	}

	start := envelope{
		Type:        "start",
		PublicKey:   req.PublicKey,
		Destination: req.Destination,
		Assistant: &assistant{
			FirstMessage: req.Agent.FirstMessage,
			Model: assistantModel{
				Provider: req.Agent.ModelProvider,
				Model:    defaultModelFor(req.Agent.ModelProvider),
				Messages: []modelMessage{{Role: "system", Content: req.Agent.SystemPrompt}},
			},
			Voice: assistantVoice{
				Provider: req.Agent.VoiceProvider,
				VoiceID:  req.Agent.VoiceID,
			},
		},
	}
	if err := c.writeJSON(conn, start); err != nil {
		conn.Close()
		return fmt.Errorf("vapi: start frame: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.stopped = false
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Stop sends the stop frame and closes the socket. Safe to call on a client
// that never started or already stopped.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	alreadyStopped := c.stopped
	c.stopped = true
	c.conn = nil
	c.mu.Unlock()

	if conn == nil || alreadyStopped {
		return nil
	}
	if err := c.writeJSON(conn, envelope{Type: "stop"}); err != nil {
		c.log.Warn("stop frame write failed", slog.String("error", err.Error()))
	}
	return conn.Close()
}

func (c *Client) SetMuted(ctx context.Context, muted bool) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("vapi: no active call")
	}
	return c.writeJSON(conn, envelope{Type: "setMuted", Muted: &muted})
}

func (c *Client) writeJSON(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteJSON(v)
}

// readLoop translates provider frames into handler callbacks until the socket
// drops. A dropped socket without a prior call-end frame is reported as an
// ended call so the session cannot hang in Connected forever.
func (c *Client) readLoop(conn *websocket.Conn) {
	sawEnd := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stopped := c.stopped
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			if !sawEnd && !stopped {
				c.log.Warn("socket dropped mid-call", slog.String("error", err.Error()))
				c.dispatch(func(h bridge.Handler) { h.OnEnded() })
			}
			return
		}

		var ev envelope
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn("unparseable provider frame", slog.String("error", err.Error()))
			continue
		}

		switch ev.Type {
		case "call-start":
			c.dispatch(func(h bridge.Handler) { h.OnConnected() })
		case "call-end":
			sawEnd = true
			c.dispatch(func(h bridge.Handler) { h.OnEnded() })
		case "message":
			if ev.Message == nil || ev.Message.Type != "transcript" {
				continue
			}
			if ev.Message.TranscriptType != "" && ev.Message.TranscriptType != "final" {
				continue
			}
			speaker := bridge.SpeakerUser
			if ev.Message.Role == "assistant" {
				speaker = bridge.SpeakerAgent
			}
			text := ev.Message.Transcript
			c.dispatch(func(h bridge.Handler) { h.OnTranscript(speaker, text) })
		case "error":
			msg := ev.Error
			if msg == "" {
				msg = "unknown provider error"
			}
			c.dispatch(func(h bridge.Handler) { h.OnError(errors.New(msg)) })
		default:
			// Unknown event types are ignored for forward compatibility.
		}
	}
}

func (c *Client) dispatch(fn func(bridge.Handler)) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		fn(h)
	}
}
