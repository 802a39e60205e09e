package settings

import "time"

// Setting is an encrypted-at-rest key/value configuration entry.
//
// Invariants:
//   - Value is stored encrypted; plaintext only exists in process memory.
//   - IsPublic=false values must never be returned across the HTTP boundary
//     to anything but an admin settings view. The Public() projection is the
//     only shape browser-held sessions ever see.
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"` // encrypted, ivhex:cipherhex
	Category  string    `json:"category" db:"category"`
	IsPublic  bool      `json:"is_public" db:"is_public"`
	UpdatedBy string    `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Well-known setting keys consumed by the call bridge.
const (
	KeyVapiPublicKey  = "vapi.publicKey"
	KeyDefaultVoiceID = "elevenlabs.defaultVoiceId"
)

// DecryptedSetting is an admin-facing view of one entry.
type DecryptedSetting struct {
	Value     string    `json:"value"`
	IsPublic  bool      `json:"is_public"`
	UpdatedAt time.Time `json:"updated_at"`
}
