package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chatforge/chatforge/internal/model"
)

// InsertMessage appends a message to a conversation.
func (r *Repository) InsertMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var metadata []byte
	if len(msg.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal message metadata: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.Role,
		msg.Content,
		metadata,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListMessages returns a conversation's messages in chronological order.
// Ties on created_at break on id so the order is deterministic.
func (r *Repository) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, metadata, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		msg, err := r.scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return msgs, nil
}

func (r *Repository) scanMessage(row pgx.Row) (*model.Message, error) {
	var (
		msg      model.Message
		metadata []byte
	)
	err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.Role,
		&msg.Content,
		&metadata,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &msg.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message metadata: %w", err)
		}
	}

	return &msg, nil
}
