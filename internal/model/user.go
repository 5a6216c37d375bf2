// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// The password hash is never serialized in API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext carries the authenticated caller identity through a request.
type AuthContext struct {
	UserID   string
	Username string
}
