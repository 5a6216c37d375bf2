package model

import "time"

// Usage event outcomes.
const (
	UsageOutcomeSuccess = "success"
	UsageOutcomeFailure = "failure"
)

// UsageEvent records one completed generation attempt for reporting.
// Events are captured asynchronously via the usage pipeline and are
// best-effort: dropping one never fails a chat request.
type UsageEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Outcome        string    `json:"outcome"`
	DurationMs     int64     `json:"duration_ms"`
	OccurredAt     time.Time `json:"occurred_at"`
}
