package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// UsageTracker meters call minutes. RemainingSeconds returning a negative
// value means the user is unmetered.
type UsageTracker interface {
	RemainingSeconds(ctx context.Context, userID string) (int, error)
	RecordCall(ctx context.Context, userID, callID string, seconds int) error
}

// ManagerConfig wires the session manager.
type ManagerConfig struct {
	Factory  ClientFactory
	Sink     Sink
	Resolver ConfigResolver
	Usage    UsageTracker
	Cap      SessionCap
	Log      *slog.Logger

	PublicKeyName     string
	FallbackPublicKey string
	DefaultVoiceID    string
}

// Manager holds at most one call session controller per user and enforces
// the quota and cross-node concurrency checks before dialing.
type Manager struct {
	cfg ManagerConfig
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Cap == nil {
		cfg.Cap = NoopSessionCap{}
	}
	return &Manager{
		cfg:      cfg,
		log:      cfg.Log.With(slog.String("component", "bridge_manager")),
		sessions: make(map[string]*Controller),
	}
}

// StartCall dials a new session for the user. The previous controller is
// replaced only once it is no longer live.
func (m *Manager) StartCall(ctx context.Context, userID string, agent AgentSnapshot, destination string) (Session, error) {
	if userID == "" {
		return Session{}, fmt.Errorf("%w: user required", ErrValidation)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		switch existing.Status() {
		case StatusDialing, StatusConnected:
			m.mu.Unlock()
			return Session{}, ErrSessionActive
		}
	}
	m.mu.Unlock()

	if m.cfg.Usage != nil {
		remaining, err := m.cfg.Usage.RemainingSeconds(ctx, userID)
		if err != nil {
			return Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if remaining == 0 {
			return Session{}, ErrQuotaExceeded
		}
	}

	ok, err := m.cfg.Cap.Acquire(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return Session{}, ErrSessionActive
	}

	client, err := m.cfg.Factory(ctx)
	if err != nil {
		m.releaseCap(userID)
		return Session{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	ctrl := NewController(ControllerConfig{
		UserID:            userID,
		Client:            client,
		Sink:              m.cfg.Sink,
		Resolver:          m.cfg.Resolver,
		Log:               m.cfg.Log,
		PublicKeyName:     m.cfg.PublicKeyName,
		FallbackPublicKey: m.cfg.FallbackPublicKey,
		DefaultVoiceID:    m.cfg.DefaultVoiceID,
		EndHook:           m.endHook(userID),
	})

	sess, err := ctrl.StartCall(ctx, agent, destination)
	if err != nil {
		ctrl.Close(ctx)
		m.releaseCap(userID)
		return Session{}, err
	}

	m.mu.Lock()
	if old, ok := m.sessions[userID]; ok && old != ctrl {
		go old.Close(context.Background())
	}
	m.sessions[userID] = ctrl
	m.mu.Unlock()
	return sess, nil
}

func (m *Manager) endHook(userID string) func(callID string, seconds int) {
	return func(callID string, seconds int) {
		ctx := context.Background()
		if m.cfg.Usage != nil && seconds > 0 {
			if err := m.cfg.Usage.RecordCall(ctx, userID, callID, seconds); err != nil {
				m.log.Error("usage accrual failed",
					slog.String("user_id", userID),
					slog.String("call_id", callID),
					slog.String("error", err.Error()))
			}
		}
		m.releaseCap(userID)
	}
}

func (m *Manager) releaseCap(userID string) {
	if err := m.cfg.Cap.Release(context.Background(), userID); err != nil {
		m.log.Warn("session cap release failed", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}

// HangUp ends the user's session if one exists. Missing sessions are a no-op.
func (m *Manager) HangUp(ctx context.Context, userID string) error {
	if ctrl := m.controller(userID); ctrl != nil {
		return ctrl.HangUp(ctx)
	}
	return nil
}

// ToggleMute flips the mute state of the user's connected call.
func (m *Manager) ToggleMute(ctx context.Context, userID string) (bool, error) {
	if ctrl := m.controller(userID); ctrl != nil {
		return ctrl.ToggleMute(ctx)
	}
	return false, nil
}

// Session returns the user's current session view, or an idle view when the
// user has never dialed.
func (m *Manager) Session(userID string) Session {
	if ctrl := m.controller(userID); ctrl != nil {
		return ctrl.Session()
	}
	return Session{UserID: userID, Status: StatusIdle}
}

func (m *Manager) controller(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Close tears down every live session, used on server shutdown.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	ctrls := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		ctrls = append(ctrls, c)
	}
	m.sessions = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range ctrls {
		c.Close(ctx)
	}
}
