package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
)

// fakeProvider is a websocket server standing in for the realtime endpoint.
// It captures the start frame and replays scripted events.
type fakeProvider struct {
	t      *testing.T
	srv    *httptest.Server
	frames chan json.RawMessage

	mu   sync.Mutex
	conn *websocket.Conn
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{t: t, frames: make(chan json.RawMessage, 16)}
	up := websocket.Upgrader{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		p.mu.Lock()
		p.conn = conn
		p.mu.Unlock()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			p.frames <- json.RawMessage(data)
		}
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) url() string {
	return "ws" + strings.TrimPrefix(p.srv.URL, "http")
}

func (p *fakeProvider) send(t *testing.T, v any) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn != nil {
			if err := conn.WriteJSON(v); err != nil {
				t.Fatalf("provider write: %v", err)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never connected")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (p *fakeProvider) nextFrame(t *testing.T) map[string]any {
	t.Helper()
	select {
	case data := <-p.frames:
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("frame decode: %v", err)
		}
		return out
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for client frame")
		return nil
	}
}

// recordingHandler collects callbacks on channels for assertion.
type recordingHandler struct {
	connected   chan struct{}
	ended       chan struct{}
	transcripts chan bridge.Utterance
	errs        chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		connected:   make(chan struct{}, 4),
		ended:       make(chan struct{}, 4),
		transcripts: make(chan bridge.Utterance, 16),
		errs:        make(chan error, 4),
	}
}

func (h *recordingHandler) OnConnected() { h.connected <- struct{}{} }
func (h *recordingHandler) OnEnded()     { h.ended <- struct{}{} }
func (h *recordingHandler) OnTranscript(speaker bridge.Speaker, text string) {
	h.transcripts <- bridge.Utterance{Speaker: speaker, Text: text}
}
func (h *recordingHandler) OnError(err error) { h.errs <- err }

func waitSignal(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func startTestCall(t *testing.T) (*fakeProvider, *Client, *recordingHandler) {
	t.Helper()
	provider := newFakeProvider(t)
	client := NewClient(Config{URL: provider.url()})
	handler := newRecordingHandler()
	client.Subscribe(handler)

	req := bridge.StartRequest{
		PublicKey:   "pk-test",
		Destination: "+15551234567",
		Agent: bridge.AgentSnapshot{
			AgentID:       "a1",
			SystemPrompt:  "You are a test agent.",
			FirstMessage:  "Hello!",
			ModelProvider: "openai",
			VoiceProvider: "elevenlabs",
			VoiceID:       "v1",
		},
	}
	if err := client.Start(context.Background(), req); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { client.Stop(context.Background()) })
	return provider, client, handler
}

func TestStartSendsAssistantPayload(t *testing.T) {
	provider, _, _ := startTestCall(t)

	frame := provider.nextFrame(t)
	if frame["type"] != "start" {
		t.Fatalf("first frame type = %v", frame["type"])
	}
	if frame["publicKey"] != "pk-test" || frame["destination"] != "+15551234567" {
		t.Fatalf("start frame = %v", frame)
	}

	asst, ok := frame["assistant"].(map[string]any)
	if !ok {
		t.Fatalf("missing assistant payload: %v", frame)
	}
	if asst["firstMessage"] != "Hello!" {
		t.Fatalf("firstMessage = %v", asst["firstMessage"])
	}
	model := asst["model"].(map[string]any)
	if model["provider"] != "openai" || model["model"] == "" {
		t.Fatalf("model = %v", model)
	}
	msgs := model["messages"].([]any)
	first := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "You are a test agent." {
		t.Fatalf("system message = %v", first)
	}
	voice := asst["voice"].(map[string]any)
	if voice["provider"] != "elevenlabs" || voice["voiceId"] != "v1" {
		t.Fatalf("voice = %v", voice)
	}
}

func TestEventTranslation(t *testing.T) {
	provider, _, handler := startTestCall(t)
	provider.nextFrame(t) // drain start frame

	provider.send(t, map[string]any{"type": "call-start"})
	waitSignal(t, handler.connected, "OnConnected")

	provider.send(t, map[string]any{
		"type":    "message",
		"message": map[string]any{"type": "transcript", "role": "assistant", "transcriptType": "final", "transcript": "Hi there"},
	})
	provider.send(t, map[string]any{
		"type":    "message",
		"message": map[string]any{"type": "transcript", "role": "user", "transcriptType": "final", "transcript": "Hello"},
	})
	// Partial transcripts and non-transcript messages are dropped.
	provider.send(t, map[string]any{
		"type":    "message",
		"message": map[string]any{"type": "transcript", "role": "user", "transcriptType": "partial", "transcript": "Hel"},
	})
	provider.send(t, map[string]any{
		"type":    "message",
		"message": map[string]any{"type": "status-update"},
	})

	u := <-handler.transcripts
	if u.Speaker != bridge.SpeakerAgent || u.Text != "Hi there" {
		t.Fatalf("first utterance = %+v", u)
	}
	u = <-handler.transcripts
	if u.Speaker != bridge.SpeakerUser || u.Text != "Hello" {
		t.Fatalf("second utterance = %+v", u)
	}

	provider.send(t, map[string]any{"type": "error", "error": "no capacity"})
	select {
	case err := <-handler.errs:
		if err.Error() != "no capacity" {
			t.Fatalf("error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for OnError")
	}

	provider.send(t, map[string]any{"type": "call-end"})
	waitSignal(t, handler.ended, "OnEnded")

	select {
	case u := <-handler.transcripts:
		t.Fatalf("unexpected extra utterance: %+v", u)
	default:
	}
}

func TestSetMutedSendsControlFrame(t *testing.T) {
	provider, client, _ := startTestCall(t)
	provider.nextFrame(t) // drain start frame

	if err := client.SetMuted(context.Background(), true); err != nil {
		t.Fatalf("set muted: %v", err)
	}
	frame := provider.nextFrame(t)
	if frame["type"] != "setMuted" || frame["muted"] != true {
		t.Fatalf("mute frame = %v", frame)
	}
}

func TestSocketDropReportsEnded(t *testing.T) {
	provider, _, handler := startTestCall(t)
	provider.nextFrame(t)

	provider.mu.Lock()
	provider.conn.Close()
	provider.mu.Unlock()

	waitSignal(t, handler.ended, "OnEnded after socket drop")
}

func TestStopAfterUnsubscribeDispatchesNothing(t *testing.T) {
	provider, client, handler := startTestCall(t)
	provider.nextFrame(t)

	client.Unsubscribe(handler)
	if err := client.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	select {
	case <-handler.ended:
		t.Fatalf("handler invoked after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}
