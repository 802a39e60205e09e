package agents

import "time"

// Agent is a customer-owned voice agent configuration.
//
// VoiceID references a voices.Voice; it is a reference, not ownership, and
// may be empty (the bridge falls back to the platform default voice).
type Agent struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`

	// Provider is the platform running the agent.
	Provider      string `json:"provider" db:"provider"`
	ModelProvider string `json:"model_provider" db:"model_provider"`

	SystemPrompt string `json:"system_prompt" db:"system_prompt"`
	FirstMessage string `json:"first_message" db:"first_message"`
	VoiceID      string `json:"voice_id,omitempty" db:"voice_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Supported provider values.
const (
	ProviderVapi   = "vapi"
	ProviderRetell = "retell"
)

func isValidProvider(p string) bool {
	return p == ProviderVapi || p == ProviderRetell
}

func isValidModelProvider(p string) bool {
	switch p {
	case "openai", "anthropic", "groq":
		return true
	default:
		return false
	}
}
