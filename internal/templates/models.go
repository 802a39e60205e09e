package templates

import "time"

// Template is an admin-curated agent blueprint. Customers copy one into an
// agent of their own; the template itself is never dialed directly.
type Template struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	// Category groups templates in the gallery (e.g. "sales", "support").
	Category string `json:"category" db:"category"`

	Provider      string `json:"provider" db:"provider"`
	ModelProvider string `json:"model_provider" db:"model_provider"`

	SystemPrompt string `json:"system_prompt" db:"system_prompt"`
	FirstMessage string `json:"first_message" db:"first_message"`

	// IsPublic gates customer visibility; private templates are staging
	// drafts only admins can see.
	IsPublic bool `json:"is_public" db:"is_public"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
