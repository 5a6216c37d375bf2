package usage

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func validPayload() EventPayload {
	return EventPayload{
		UserID:         "user-1",
		ConversationID: "conv-1",
		Provider:       "openai",
		Model:          "gpt-4",
		Outcome:        "success",
		DurationMs:     150,
		OccurredAt:     time.Now().UnixMilli(),
	}
}

func TestValidateEventPayload_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateEventPayload(validPayload()); err != nil {
		t.Errorf("Valid payload should pass, got: %v", err)
	}

	failure := validPayload()
	failure.Outcome = "failure"
	if err := ValidateEventPayload(failure); err != nil {
		t.Errorf("Failure outcome should pass, got: %v", err)
	}
}

func TestValidateEventPayload_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*EventPayload)
	}{
		{"missing user_id", func(p *EventPayload) { p.UserID = "" }},
		{"missing conversation_id", func(p *EventPayload) { p.ConversationID = "" }},
		{"missing provider", func(p *EventPayload) { p.Provider = "" }},
		{"provider too long", func(p *EventPayload) { p.Provider = strings.Repeat("x", 51) }},
		{"missing model", func(p *EventPayload) { p.Model = "" }},
		{"model too long", func(p *EventPayload) { p.Model = strings.Repeat("x", 101) }},
		{"unknown outcome", func(p *EventPayload) { p.Outcome = "maybe" }},
		{"negative duration", func(p *EventPayload) { p.DurationMs = -1 }},
		{"missing occurred_at", func(p *EventPayload) { p.OccurredAt = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload := validPayload()
			tt.mutate(&payload)

			if err := ValidateEventPayload(payload); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestParseMessages_ValidPayloads(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(nil, nil, logger, "test-consumer", nil)

	payload := validPayload()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	messages := []redis.XMessage{
		{ID: "1-0", Values: map[string]interface{}{"payload": string(data)}},
	}

	events, ids := w.parseMessages(context.Background(), messages)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if len(ids) != 1 || ids[0] != "1-0" {
		t.Errorf("Expected message ID %q acked, got %v", "1-0", ids)
	}
	if events[0].Provider != payload.Provider {
		t.Errorf("Provider mismatch: got %q, want %q", events[0].Provider, payload.Provider)
	}
	if events[0].OccurredAt.UnixMilli() != payload.OccurredAt {
		t.Error("OccurredAt should round-trip through Unix milliseconds")
	}
	if events[0].ID == "" {
		t.Error("Event should get a generated ID")
	}
}
