package model

import "time"

// Conversation is an ordered sequence of message turns owned by one user.
// Provider and Model record the defaults chosen at creation; each send-message
// request may still name its own provider/model pair.
// UpdatedAt is bumped on every appended message.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
