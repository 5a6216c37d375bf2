package usage

import (
	"fmt"

	"github.com/chatforge/chatforge/internal/model"
)

const (
	maxProviderLength = 50
	maxModelLength    = 100
)

// ValidateEventPayload validates usage event payload fields.
func ValidateEventPayload(payload EventPayload) error {
	if payload.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if payload.ConversationID == "" {
		return fmt.Errorf("conversation_id is required")
	}
	if payload.Provider == "" || len(payload.Provider) > maxProviderLength {
		return fmt.Errorf("provider missing or too long")
	}
	if payload.Model == "" || len(payload.Model) > maxModelLength {
		return fmt.Errorf("model missing or too long")
	}
	if payload.Outcome != model.UsageOutcomeSuccess && payload.Outcome != model.UsageOutcomeFailure {
		return fmt.Errorf("outcome must be %q or %q", model.UsageOutcomeSuccess, model.UsageOutcomeFailure)
	}
	if payload.DurationMs < 0 {
		return fmt.Errorf("duration_ms must not be negative")
	}
	if payload.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}
	return nil
}
