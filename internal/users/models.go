package users

import "time"

// User is an account on the platform.
//
// Roles: "admin" manages customers, voices, templates and settings;
// "customer" owns agents and places calls.
type User struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
	AvatarURL    string `json:"avatar_url,omitempty" db:"avatar_url"`
	PasswordHash string `json:"-" db:"password_hash"`

	// MaxMinutes is the monthly calling quota; 0 means unlimited.
	MaxMinutes int `json:"max_minutes" db:"max_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
