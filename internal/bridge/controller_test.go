package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeClient struct {
	mu         sync.Mutex
	handler    Handler
	subscribed bool

	startErr  error
	starts    []StartRequest
	stops     int
	muteCalls []bool
}

func (f *fakeClient) Subscribe(h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	f.subscribed = true
}

func (f *fakeClient) Unsubscribe(h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handler == h {
		f.handler = nil
		f.subscribed = false
	}
}

func (f *fakeClient) Start(ctx context.Context, req StartRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts = append(f.starts, req)
	return nil
}

func (f *fakeClient) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeClient) SetMuted(ctx context.Context, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muteCalls = append(f.muteCalls, muted)
	return nil
}

func (f *fakeClient) lastStart(t *testing.T) StartRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.starts) == 0 {
		t.Fatalf("no start request captured")
	}
	return f.starts[len(f.starts)-1]
}

// memorySink records saves on a buffered channel so tests can wait for the
// asynchronous persistence goroutine.
type memorySink struct {
	saved chan Recording
	err   error
}

func newMemorySink() *memorySink {
	return &memorySink{saved: make(chan Recording, 8)}
}

func (s *memorySink) SaveRecording(ctx context.Context, rec Recording) error {
	s.saved <- rec
	return s.err
}

func (s *memorySink) waitForSave(t *testing.T) Recording {
	t.Helper()
	select {
	case rec := <-s.saved:
		return rec
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for recording save")
		return Recording{}
	}
}

func (s *memorySink) assertNoSave(t *testing.T) {
	t.Helper()
	select {
	case rec := <-s.saved:
		t.Fatalf("unexpected recording save: %+v", rec)
	case <-time.After(50 * time.Millisecond):
	}
}

type staticResolver map[string]string

func (r staticResolver) Resolve(ctx context.Context, key, fallback string) string {
	if v, ok := r[key]; ok && v != "" {
		return v
	}
	return fallback
}

func testAgent() AgentSnapshot {
	return AgentSnapshot{
		AgentID:       "a1",
		Name:          "Sales Agent",
		SystemPrompt:  "You are a helpful sales agent.",
		FirstMessage:  "Hi, this is Sam from Acme.",
		ModelProvider: "openai",
		VoiceProvider: "elevenlabs",
		VoiceID:       "voice-1",
	}
}

type controllerFixture struct {
	ctrl   *Controller
	client *fakeClient
	sink   *memorySink
	clock  *fakeClock
}

func newControllerFixture(t *testing.T, resolver ConfigResolver, fallbackKey string) *controllerFixture {
	t.Helper()
	client := &fakeClient{}
	sink := newMemorySink()
	clock := newFakeClock()
	ctrl := NewController(ControllerConfig{
		UserID:            "u1",
		Client:            client,
		Sink:              sink,
		Resolver:          resolver,
		PublicKeyName:     "vapi.publicKey",
		FallbackPublicKey: fallbackKey,
		DefaultVoiceID:    "default-voice",
	})
	ctrl.clock = clock.Now
	ctrl.cooldown = 10 * time.Millisecond
	t.Cleanup(func() { ctrl.Close(context.Background()) })
	return &controllerFixture{ctrl: ctrl, client: client, sink: sink, clock: clock}
}

func TestCallLifecycleFreezesDuration(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk-live"}, "")
	ctx := context.Background()

	sess, err := fx.ctrl.StartCall(ctx, testAgent(), "+15551234567")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Status != StatusDialing {
		t.Fatalf("expected dialing, got %s", sess.Status)
	}

	// Provider answers one second after the dial began.
	fx.clock.Advance(time.Second)
	fx.client.handler.OnConnected()
	if got := fx.ctrl.Status(); got != StatusConnected {
		t.Fatalf("expected connected, got %s", got)
	}

	fx.clock.Advance(3 * time.Second)
	if d := fx.ctrl.Session().DurationSeconds; d != 3 {
		t.Fatalf("live duration = %d, want 3", d)
	}

	fx.client.handler.OnTranscript(SpeakerAgent, "Hi, this is Sam from Acme.")
	fx.client.handler.OnTranscript(SpeakerUser, "Hello.")

	fx.clock.Advance(2 * time.Second)
	fx.client.handler.OnEnded()

	sess = fx.ctrl.Session()
	if sess.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", sess.Status)
	}
	if sess.DurationSeconds != 5 {
		t.Fatalf("frozen duration = %d, want 5", sess.DurationSeconds)
	}

	rec := fx.sink.waitForSave(t)
	if rec.Destination != "+15551234567" {
		t.Fatalf("recording destination = %q, want the dialed number", rec.Destination)
	}
	if rec.DurationSeconds != 5 {
		t.Fatalf("recording duration = %d, want 5", rec.DurationSeconds)
	}
	if rec.UserID != "u1" {
		t.Fatalf("recording user = %q", rec.UserID)
	}
	if len(rec.Transcript) != 2 || rec.Transcript[0].Speaker != SpeakerAgent {
		t.Fatalf("transcript = %+v", rec.Transcript)
	}
}

func TestTranscriptKeepsArrivalOrder(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()

	for i := 0; i < 12; i++ {
		speaker := SpeakerAgent
		if i%2 == 1 {
			speaker = SpeakerUser
		}
		fx.client.handler.OnTranscript(speaker, fmt.Sprintf("line %d", i))
	}

	got := fx.ctrl.Session().Transcript
	if len(got) != 12 {
		t.Fatalf("transcript length = %d, want 12", len(got))
	}
	for i, u := range got {
		want := fmt.Sprintf("line %d", i)
		if u.Text != want {
			t.Fatalf("transcript[%d] = %q, want %q", i, u.Text, want)
		}
		wantSpeaker := SpeakerAgent
		if i%2 == 1 {
			wantSpeaker = SpeakerUser
		}
		if u.Speaker != wantSpeaker {
			t.Fatalf("transcript[%d] speaker = %q, want %q", i, u.Speaker, wantSpeaker)
		}
	}
}

func TestHangUpWhileDialingNeverConnects(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := fx.ctrl.HangUp(ctx); err != nil {
		t.Fatalf("hangup: %v", err)
	}

	sess := fx.ctrl.Session()
	if sess.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", sess.Status)
	}
	if sess.DurationSeconds != 0 {
		t.Fatalf("duration = %d, want 0 for unanswered call", sess.DurationSeconds)
	}

	// The provider answering after the hang up must not revive the call.
	fx.client.handler.OnConnected()
	if got := fx.ctrl.Status(); got != StatusEnded {
		t.Fatalf("stray connect revived session: %s", got)
	}

	fx.sink.assertNoSave(t)
}

func TestHangUpIsIdempotent(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if err := fx.ctrl.HangUp(ctx); err != nil {
		t.Fatalf("hangup on idle: %v", err)
	}
	if fx.client.stops != 0 {
		t.Fatalf("idle hangup must not reach the provider")
	}

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()
	if err := fx.ctrl.HangUp(ctx); err != nil {
		t.Fatalf("hangup: %v", err)
	}
	if err := fx.ctrl.HangUp(ctx); err != nil {
		t.Fatalf("second hangup: %v", err)
	}
	if fx.client.stops != 1 {
		t.Fatalf("stop calls = %d, want 1", fx.client.stops)
	}
}

func TestDuplicateEndEventsSaveOnce(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()
	fx.client.handler.OnTranscript(SpeakerUser, "hello")
	fx.client.handler.OnEnded()
	fx.client.handler.OnEnded()
	fx.client.handler.OnEnded()

	fx.sink.waitForSave(t)
	fx.sink.assertNoSave(t)
}

func TestEmptyTranscriptSkipsSink(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()
	fx.clock.Advance(10 * time.Second)
	fx.client.handler.OnEnded()

	if d := fx.ctrl.Session().DurationSeconds; d != 10 {
		t.Fatalf("duration = %d, want 10", d)
	}
	fx.sink.assertNoSave(t)
}

func TestToggleMute(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	// Idle: no-op, never reaches the provider.
	muted, err := fx.ctrl.ToggleMute(ctx)
	if err != nil || muted {
		t.Fatalf("idle toggle = %v, %v; want false, nil", muted, err)
	}
	if len(fx.client.muteCalls) != 0 {
		t.Fatalf("idle toggle must not reach the provider")
	}

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()

	muted, err = fx.ctrl.ToggleMute(ctx)
	if err != nil || !muted {
		t.Fatalf("first toggle = %v, %v; want true, nil", muted, err)
	}
	muted, err = fx.ctrl.ToggleMute(ctx)
	if err != nil || muted {
		t.Fatalf("second toggle = %v, %v; want false, nil", muted, err)
	}
	if len(fx.client.muteCalls) != 2 || !fx.client.muteCalls[0] || fx.client.muteCalls[1] {
		t.Fatalf("provider mute calls = %v", fx.client.muteCalls)
	}
}

func TestMissingPublicKeyStaysIdle(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{}, "")
	_, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if got := fx.ctrl.Status(); got != StatusIdle {
		t.Fatalf("expected idle after config failure, got %s", got)
	}
	if len(fx.client.starts) != 0 {
		t.Fatalf("provider must not be dialed without a key")
	}
}

type resolverFunc func(ctx context.Context, key, fallback string) string

func (f resolverFunc) Resolve(ctx context.Context, key, fallback string) string {
	return f(ctx, key, fallback)
}

func TestKeyResolutionHappensBeforeDialing(t *testing.T) {
	var (
		ctrl     *Controller
		observed Status
	)
	fx := newControllerFixture(t, resolverFunc(func(ctx context.Context, key, fallback string) string {
		observed = ctrl.Status()
		return ""
	}), "")
	ctrl = fx.ctrl

	_, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if observed != StatusIdle {
		t.Fatalf("session observable as %s while the key was unresolved", observed)
	}
}

func TestFallbackPublicKeyIsUsed(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{}, "pk-env")
	if _, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := fx.client.lastStart(t).PublicKey; got != "pk-env" {
		t.Fatalf("public key = %q, want env fallback", got)
	}
}

func TestSettingsKeyBeatsFallback(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk-db"}, "pk-env")
	if _, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := fx.client.lastStart(t).PublicKey; got != "pk-db" {
		t.Fatalf("public key = %q, want settings value", got)
	}
}

func TestProviderStartFailureReturnsToIdle(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	fx.client.startErr = errors.New("dial tcp: connection refused")

	_, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1")
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if got := fx.ctrl.Status(); got != StatusIdle {
		t.Fatalf("expected idle after provider failure, got %s", got)
	}
}

func TestStartValidation(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty destination, got %v", err)
	}

	agent := testAgent()
	agent.SystemPrompt = ""
	if _, err := fx.ctrl.StartCall(ctx, agent, "+1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing prompt, got %v", err)
	}

	// Busy session rejects a second dial.
	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation while dialing, got %v", err)
	}
}

func TestDefaultVoiceApplied(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	agent := testAgent()
	agent.VoiceID = ""
	if _, err := fx.ctrl.StartCall(context.Background(), agent, "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := fx.client.lastStart(t).Agent.VoiceID; got != "default-voice" {
		t.Fatalf("voice id = %q, want controller default", got)
	}
}

func TestTranscriptOutsideConnectedIsDropped(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnTranscript(SpeakerUser, "too early")
	fx.client.handler.OnConnected()
	fx.client.handler.OnTranscript(SpeakerUser, "in call")
	fx.client.handler.OnEnded()
	fx.client.handler.OnTranscript(SpeakerUser, "too late")

	rec := fx.sink.waitForSave(t)
	if len(rec.Transcript) != 1 || rec.Transcript[0].Text != "in call" {
		t.Fatalf("transcript = %+v", rec.Transcript)
	}
}

func TestErrorWhileDialingAbortsToIdle(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnError(errors.New("upstream rejected call"))
	if got := fx.ctrl.Status(); got != StatusIdle {
		t.Fatalf("expected idle after dial error, got %s", got)
	}

	// A mid-call error must not end the session.
	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+1"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	fx.client.handler.OnConnected()
	fx.client.handler.OnError(errors.New("transient"))
	if got := fx.ctrl.Status(); got != StatusConnected {
		t.Fatalf("expected connected after transient error, got %s", got)
	}
}

func TestCooldownReturnsToIdleAndClearsState(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	ctx := context.Background()

	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+15551230000"); err != nil {
		t.Fatalf("start: %v", err)
	}
	fx.client.handler.OnConnected()
	fx.clock.Advance(4 * time.Second)
	fx.client.handler.OnEnded()

	// Ended state is observable until the cooldown fires.
	if got := fx.ctrl.Status(); got != StatusEnded {
		t.Fatalf("expected ended before cooldown, got %s", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fx.ctrl.Status() != StatusIdle {
		if time.Now().After(deadline) {
			t.Fatalf("session never returned to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sess := fx.ctrl.Session()
	if sess.CallID != "" || sess.Destination != "" || sess.DurationSeconds != 0 || len(sess.Transcript) != 0 {
		t.Fatalf("per-call state not cleared: %+v", sess)
	}

	// A fresh call starts cleanly after the reset.
	if _, err := fx.ctrl.StartCall(ctx, testAgent(), "+15551239999"); err != nil {
		t.Fatalf("restart after cooldown: %v", err)
	}
}

func TestCloseUnsubscribesHandler(t *testing.T) {
	fx := newControllerFixture(t, staticResolver{"vapi.publicKey": "pk"}, "")
	fx.ctrl.Close(context.Background())
	if fx.client.subscribed {
		t.Fatalf("handler still registered after close")
	}
	if _, err := fx.ctrl.StartCall(context.Background(), testAgent(), "+1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation after close, got %v", err)
	}
}
