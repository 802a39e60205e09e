package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - actor and ip capture are best-effort; do not block critical flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID string `json:"actor_user_id" db:"actor_user_id"`
	// ActorRole may include hidden roles.
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	SettingKey   string `json:"setting_key,omitempty" db:"setting_key"`
	TargetUserID string `json:"target_user_id,omitempty" db:"target_user_id"`
	CallID       string `json:"call_id,omitempty" db:"call_id"`
	AgentID      string `json:"agent_id,omitempty" db:"agent_id"`
	VoiceID      string `json:"voice_id,omitempty" db:"voice_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAdminAction   EventType = "admin_action"
	EventTypeSettingChange EventType = "setting_change"
	EventTypeCallSession   EventType = "call_session"
)
