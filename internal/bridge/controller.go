package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTick     = time.Second
	defaultCooldown = 2 * time.Second
)

// ControllerConfig wires one call session's dependencies.
type ControllerConfig struct {
	UserID   string
	Client   Client
	Sink     Sink
	Resolver ConfigResolver
	Log      *slog.Logger

	// PublicKeyName is the settings key holding the provider public key.
	PublicKeyName string
	// FallbackPublicKey is used when the settings store has no key.
	FallbackPublicKey string
	// DefaultVoiceID fills in agents created without an explicit voice.
	DefaultVoiceID string

	// EndHook, when set, runs once per ended call with the frozen duration.
	// The manager uses it for usage accounting and cap release.
	EndHook func(callID string, seconds int)
}

// Controller owns the state machine of a single user's call session. It is
// the event handler for its Client: provider events and API calls both funnel
// through the controller's mutex, giving the same serialized semantics as a
// single-threaded event loop.
type Controller struct {
	cfg ControllerConfig
	log *slog.Logger

	// clock, tick and cooldown are swapped in tests.
	clock    func() time.Time
	tick     time.Duration
	cooldown time.Duration

	mu              sync.Mutex
	status          Status
	callID          string
	agent           AgentSnapshot
	destination     string
	muted           bool
	startedAt       time.Time
	durationSeconds int
	transcript      []Utterance
	stopTicker      chan struct{}
	cooldownTimer   *time.Timer
	closed          bool
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	c := &Controller{
		cfg:      cfg,
		log:      cfg.Log.With(slog.String("component", "bridge"), slog.String("user_id", cfg.UserID)),
		clock:    time.Now,
		tick:     defaultTick,
		cooldown: defaultCooldown,
		status:   StatusIdle,
	}
	cfg.Client.Subscribe(c)
	return c
}

// StartCall validates the request, resolves provider configuration and dials.
// The agent snapshot is frozen here; later edits to the agent do not reach
// the live call.
func (c *Controller) StartCall(ctx context.Context, agent AgentSnapshot, destination string) (Session, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: session closed", ErrValidation)
	}
	if c.status != StatusIdle {
		status := c.status
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: cannot start call while %s", ErrValidation, status)
	}
	if destination == "" {
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: destination required", ErrValidation)
	}
	if agent.AgentID == "" || agent.SystemPrompt == "" || agent.FirstMessage == "" {
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: agent is missing prompt configuration", ErrValidation)
	}
	if agent.VoiceID == "" {
		agent.VoiceID = c.cfg.DefaultVoiceID
	}
	c.mu.Unlock()

	// Resolve configuration while still Idle. A misconfigured deployment must
	// never be observable as a dialing session.
	publicKey := c.cfg.Resolver.Resolve(ctx, c.cfg.PublicKeyName, c.cfg.FallbackPublicKey)
	if publicKey == "" {
		return Session{}, fmt.Errorf("%w: no public key configured", ErrConfiguration)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: session closed", ErrValidation)
	}
	if c.status != StatusIdle {
		status := c.status
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: cannot start call while %s", ErrValidation, status)
	}
	c.status = StatusDialing
	c.callID = uuid.NewString()
	c.agent = agent
	c.destination = destination
	c.muted = false
	c.durationSeconds = 0
	c.transcript = nil
	callID := c.callID
	c.mu.Unlock()

	err := c.cfg.Client.Start(ctx, StartRequest{
		PublicKey:   publicKey,
		Destination: destination,
		Agent:       agent,
	})
	if err != nil {
		c.mu.Lock()
		c.status = StatusIdle
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	c.log.Info("call dialing", slog.String("call_id", callID), slog.String("agent_id", agent.AgentID))
	return c.Session(), nil
}

// HangUp ends the session from the user's side. Idempotent: hanging up an
// idle or already-ended session is a no-op.
func (c *Controller) HangUp(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusDialing && c.status != StatusConnected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// Ask the provider to stop even if the socket already dropped.
	if err := c.cfg.Client.Stop(ctx); err != nil {
		c.log.Warn("provider stop failed", slog.String("error", err.Error()))
	}
	c.end()
	return nil
}

// ToggleMute flips the microphone state of a connected call and returns the
// new state. Outside Connected it is a no-op returning false.
func (c *Controller) ToggleMute(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.status != StatusConnected {
		c.mu.Unlock()
		return false, nil
	}
	c.muted = !c.muted
	muted := c.muted
	c.mu.Unlock()

	if err := c.cfg.Client.SetMuted(ctx, muted); err != nil {
		c.log.Warn("provider mute failed", slog.String("error", err.Error()))
	}
	return muted, nil
}

// Session returns a snapshot of the current state. While connected the
// duration is computed live from the clock.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.durationSeconds
	if c.status == StatusConnected {
		duration = int(c.clock().Sub(c.startedAt).Seconds())
	}
	transcript := make([]Utterance, len(c.transcript))
	copy(transcript, c.transcript)

	return Session{
		CallID:          c.callID,
		UserID:          c.cfg.UserID,
		Status:          c.status,
		Agent:           c.agent.AgentID,
		Destination:     c.destination,
		Muted:           c.muted,
		DurationSeconds: duration,
		Transcript:      transcript,
		StartedAt:       c.startedAt,
	}
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close tears the controller down: the handler is unregistered, timers are
// stopped and any live call is stopped defensively.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	active := c.status == StatusDialing || c.status == StatusConnected
	if c.cooldownTimer != nil {
		c.cooldownTimer.Stop()
		c.cooldownTimer = nil
	}
	if c.stopTicker != nil {
		close(c.stopTicker)
		c.stopTicker = nil
	}
	c.mu.Unlock()

	if active {
		if err := c.cfg.Client.Stop(ctx); err != nil {
			c.log.Warn("provider stop failed during close", slog.String("error", err.Error()))
		}
		c.end()
	}
	c.cfg.Client.Unsubscribe(c)
}

// OnConnected implements Handler. Only a dialing session can connect; a stray
// event in any other state is dropped.
func (c *Controller) OnConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusDialing {
		return
	}
	c.status = StatusConnected
	c.startedAt = c.clock()
	c.durationSeconds = 0
	c.transcript = nil
	c.muted = false

	c.stopTicker = make(chan struct{})
	go c.runTicker(c.stopTicker)

	c.log.Info("call connected", slog.String("call_id", c.callID))
}

// OnEnded implements Handler.
func (c *Controller) OnEnded() { c.end() }

// OnTranscript implements Handler. Utterances are appended in arrival order;
// anything received outside Connected is dropped.
func (c *Controller) OnTranscript(speaker Speaker, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusConnected || text == "" {
		return
	}
	c.transcript = append(c.transcript, Utterance{Speaker: speaker, Text: text, At: c.clock()})
}

// OnError implements Handler. A failure while dialing aborts back to Idle; a
// failure mid-call is logged and the call is left to end via OnEnded.
func (c *Controller) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status {
	case StatusDialing:
		c.status = StatusIdle
		c.log.Warn("dial failed", slog.String("error", err.Error()))
	case StatusConnected:
		c.log.Warn("provider error during call", slog.String("call_id", c.callID), slog.String("error", err.Error()))
	}
}

// end freezes the session. Idempotent: the first caller wins, later calls
// return immediately. The recording save and usage hook run off the lock.
func (c *Controller) end() {
	c.mu.Lock()
	if c.status != StatusDialing && c.status != StatusConnected {
		c.mu.Unlock()
		return
	}
	wasConnected := c.status == StatusConnected
	now := c.clock()
	if wasConnected {
		c.durationSeconds = int(now.Sub(c.startedAt).Seconds())
	} else {
		c.durationSeconds = 0
	}
	c.status = StatusEnded
	if c.stopTicker != nil {
		close(c.stopTicker)
		c.stopTicker = nil
	}

	callID := c.callID
	duration := c.durationSeconds
	rec := Recording{
		CallID:          callID,
		UserID:          c.cfg.UserID,
		Destination:     c.destination,
		DurationSeconds: duration,
		StartedAt:       c.startedAt,
		EndedAt:         now,
	}
	if len(c.transcript) > 0 {
		rec.Transcript = make([]Utterance, len(c.transcript))
		copy(rec.Transcript, c.transcript)
	}
	if !c.closed {
		c.cooldownTimer = time.AfterFunc(c.cooldown, c.resetToIdle)
	}
	c.mu.Unlock()

	c.log.Info("call ended", slog.String("call_id", callID), slog.Int("duration_seconds", duration))

	// Persist off the session lifecycle: a sink failure must never block or
	// fail the session.
	if len(rec.Transcript) > 0 {
		go func() {
			if err := c.cfg.Sink.SaveRecording(context.Background(), rec); err != nil {
				c.log.Error("recording save failed", slog.String("call_id", rec.CallID), slog.String("error", err.Error()))
			}
		}()
	}
	if c.cfg.EndHook != nil {
		go c.cfg.EndHook(callID, duration)
	}
}

// resetToIdle clears all per-call state after the post-call cooldown.
func (c *Controller) resetToIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusEnded {
		return
	}
	c.status = StatusIdle
	c.callID = ""
	c.agent = AgentSnapshot{}
	c.destination = ""
	c.muted = false
	c.durationSeconds = 0
	c.transcript = nil
	c.startedAt = time.Time{}
	c.cooldownTimer = nil
}

// runTicker advances the live duration once per tick while connected. The
// frozen duration at end is computed from the clock, so a missed tick cannot
// under-count.
func (c *Controller) runTicker(stop chan struct{}) {
	t := time.NewTicker(c.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.mu.Lock()
			if c.status == StatusConnected {
				c.durationSeconds = int(c.clock().Sub(c.startedAt).Seconds())
			}
			c.mu.Unlock()
		}
	}
}
