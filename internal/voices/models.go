package voices

import "time"

// Voice is a shared, admin-managed library entry.
//
// Visibility rule: a voice is visible to a user iff IsPublic, or the user id
// appears in AssignedTo.
//
// Provider and ProviderVoiceID must be treated as immutable once a call
// snapshot references them; the bridge copies both into its snapshot, so
// later edits cannot affect an in-flight call.
type Voice struct {
	ID              string   `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	Provider        string   `json:"provider" db:"provider"`
	ProviderVoiceID string   `json:"provider_voice_id" db:"provider_voice_id"`
	PreviewURL      string   `json:"preview_url,omitempty" db:"preview_url"`
	IsPublic        bool     `json:"is_public" db:"is_public"`
	AssignedTo      []string `json:"assigned_to,omitempty" db:"assigned_to"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VisibleTo reports whether a user may use this voice.
func (v Voice) VisibleTo(userID string) bool {
	if v.IsPublic {
		return true
	}
	for _, id := range v.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

func isValidProvider(p string) bool {
	switch p {
	case "vapi", "elevenlabs", "openai":
		return true
	default:
		return false
	}
}
