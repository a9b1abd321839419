// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account able to submit emails.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal resolved from a session token.
type Identity struct {
	ID    string
	Email string
}
