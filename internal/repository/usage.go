package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chatforge/chatforge/internal/model"
)

// BulkInsertUsageEvents inserts a batch of usage events. Duplicate IDs are
// ignored so pipeline redeliveries stay idempotent.
func (r *Repository) BulkInsertUsageEvents(ctx context.Context, events []*model.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO usage_events (
			id, user_id, conversation_id, provider, model, outcome, duration_ms, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.UserID,
			event.ConversationID,
			event.Provider,
			event.Model,
			event.Outcome,
			event.DurationMs,
			event.OccurredAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert usage event %d: %w", i, err)
		}
	}

	return nil
}
