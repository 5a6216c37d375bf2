package model

import "time"

// Message roles. RoleSystem is accepted in stored history but never produced
// by the API surface itself.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation turn. Messages are append-only: a failed
// generation is reported as a new assistant turn, never as an edit.
// Canonical history ordering is (CreatedAt ASC, ID ASC).
type Message struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Role           string            `json:"role"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
