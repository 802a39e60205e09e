package bridge

import "time"

// Status is the lifecycle state of a call session.
//
// Transitions:
//
//	Idle -> Dialing -> Connected -> Ended -> (cooldown) -> Idle
//	         \__________________-> Ended (hang up before answer)
type Status string

const (
	StatusIdle      Status = "idle"
	StatusDialing   Status = "dialing"
	StatusConnected Status = "connected"
	StatusEnded     Status = "ended"
)

// Speaker attributes a transcript utterance.
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerUser  Speaker = "user"
)

// Utterance is one finalized transcript line, kept in arrival order.
type Utterance struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// AgentSnapshot is the frozen agent configuration a session dials with. It is
// captured once at start so concurrent agent edits cannot affect a live call.
type AgentSnapshot struct {
	AgentID       string `json:"agent_id"`
	Name          string `json:"name"`
	SystemPrompt  string `json:"system_prompt"`
	FirstMessage  string `json:"first_message"`
	ModelProvider string `json:"model_provider"`
	VoiceProvider string `json:"voice_provider"`
	VoiceID       string `json:"voice_id"`
}

// Session is a point-in-time view of a controller's state, safe to serialize.
type Session struct {
	CallID          string      `json:"call_id,omitempty"`
	UserID          string      `json:"user_id,omitempty"`
	Status          Status      `json:"status"`
	Agent           string      `json:"agent_id,omitempty"`
	Destination     string      `json:"destination,omitempty"`
	Muted           bool        `json:"muted"`
	DurationSeconds int         `json:"duration_seconds"`
	Transcript      []Utterance `json:"transcript,omitempty"`
	StartedAt       time.Time   `json:"started_at,omitempty"`
}
