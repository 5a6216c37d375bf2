package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/chatforge/chatforge/internal/model"
)

// ErrConversationNotFound is returned when a conversation does not exist or
// belongs to a different user.
var ErrConversationNotFound = errors.New("conversation not found")

// CreateConversation inserts a new conversation.
func (r *Repository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, title, provider, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		conv.ID,
		conv.UserID,
		conv.Title,
		conv.Provider,
		conv.Model,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

// GetConversation retrieves a conversation by ID, scoped to its owner.
func (r *Repository) GetConversation(ctx context.Context, userID, id string) (*model.Conversation, error) {
	query := `
		SELECT id, user_id, title, provider, model, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`

	conv, err := r.scanConversation(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

// ListConversations returns a user's conversations, most recently active first.
func (r *Repository) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	query := `
		SELECT id, user_id, title, provider, model, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		conv, err := r.scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return convs, nil
}

// UpdateConversationTitle renames a conversation, scoped to its owner.
func (r *Repository) UpdateConversationTitle(ctx context.Context, userID, id, title string, updatedAt time.Time) error {
	query := `
		UPDATE conversations
		SET title = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, userID, title, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// TouchConversation bumps a conversation's updated_at timestamp.
func (r *Repository) TouchConversation(ctx context.Context, id string, updatedAt time.Time) error {
	query := `
		UPDATE conversations
		SET updated_at = $2
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, updatedAt); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return nil
}

// DeleteConversation removes a conversation and, via cascade, its messages.
func (r *Repository) DeleteConversation(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM conversations
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

func (r *Repository) scanConversation(row pgx.Row) (*model.Conversation, error) {
	var conv model.Conversation
	err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&conv.Provider,
		&conv.Model,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
