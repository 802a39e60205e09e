package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.ActorUserID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogSettingChange records an admin editing a platform setting. The stored
// metadata must never contain decrypted secret values.
func (s *Service) LogSettingChange(ctx context.Context, actorUserID, actorRole, ip, settingKey, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeSettingChange,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		SettingKey:  settingKey,
		Message:     message,
	})
}

// LogAdminAction records an admin action against another user's account.
func (s *Service) LogAdminAction(ctx context.Context, actorUserID, actorRole, ip, targetUserID, message, metadata string) error {
	return s.Append(ctx, Event{
		Type:         EventTypeAdminAction,
		ActorUserID:  actorUserID,
		ActorRole:    actorRole,
		IPAddress:    ip,
		TargetUserID: targetUserID,
		Message:      message,
		Metadata:     metadata,
	})
}

// LogCallSession records the lifecycle edge of a call session (started or
// ended) for traceability.
func (s *Service) LogCallSession(ctx context.Context, actorUserID, ip, callID, agentID, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCallSession,
		ActorUserID: actorUserID,
		IPAddress:   ip,
		CallID:      callID,
		AgentID:     agentID,
		Message:     message,
	})
}
