package recordings

import "time"

// CallRecording is an immutable, append-only record of a finished call.
//
// Invariants:
// - Created exactly once per completed call session; never updated or deleted.
// - user_id is required for tenancy isolation.
type CallRecording struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	// Duration is the frozen call duration in seconds.
	Duration int `json:"duration" db:"duration"`

	// Transcript is the flattened speaker-attributed text.
	Transcript string `json:"transcript" db:"transcript"`

	Sentiment Sentiment `json:"sentiment" db:"sentiment"`
	AudioURL  string    `json:"audio_url,omitempty" db:"audio_url"`

	// Highlights is optional structured annotation, stored as JSON.
	Highlights map[string]string `json:"highlights,omitempty" db:"highlights"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func isValidSentiment(s Sentiment) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}
