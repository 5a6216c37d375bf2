package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chatforge/chatforge/internal/model"
)

// ErrCredentialNotFound is returned when a credential does not exist or
// belongs to a different user.
var ErrCredentialNotFound = errors.New("credential not found")

// CreateCredential inserts a new provider credential.
func (r *Repository) CreateCredential(ctx context.Context, cred *model.Credential) error {
	query := `
		INSERT INTO credentials (id, user_id, provider, key_name, encrypted_key, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		cred.ID,
		cred.UserID,
		cred.Provider,
		cred.KeyName,
		cred.EncryptedKey,
		cred.IsActive,
		cred.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

// GetCredential retrieves a credential by ID, scoped to its owner.
func (r *Repository) GetCredential(ctx context.Context, userID, id string) (*model.Credential, error) {
	query := `
		SELECT id, user_id, provider, key_name, encrypted_key, is_active, created_at
		FROM credentials
		WHERE id = $1 AND user_id = $2
	`

	cred, err := r.scanCredential(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// GetActiveCredential returns the most recently added active credential for
// a user and provider. This is the lookup the send-message path depends on.
func (r *Repository) GetActiveCredential(ctx context.Context, userID, provider string) (*model.Credential, error) {
	query := `
		SELECT id, user_id, provider, key_name, encrypted_key, is_active, created_at
		FROM credentials
		WHERE user_id = $1 AND provider = $2 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	cred, err := r.scanCredential(r.pool.QueryRow(ctx, query, userID, provider))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get active credential: %w", err)
	}

	return cred, nil
}

// ListCredentials returns all credentials belonging to a user, newest first.
func (r *Repository) ListCredentials(ctx context.Context, userID string) ([]*model.Credential, error) {
	query := `
		SELECT id, user_id, provider, key_name, encrypted_key, is_active, created_at
		FROM credentials
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*model.Credential
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}

	return creds, nil
}

// UpdateCredential rewrites a credential's mutable fields, scoped to its owner.
func (r *Repository) UpdateCredential(ctx context.Context, cred *model.Credential) error {
	query := `
		UPDATE credentials
		SET key_name = $3, encrypted_key = $4, is_active = $5
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, cred.ID, cred.UserID, cred.KeyName, cred.EncryptedKey, cred.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// UpdateCredentialStatus toggles a credential's active flag, scoped to its owner.
func (r *Repository) UpdateCredentialStatus(ctx context.Context, userID, id string, active bool) error {
	query := `
		UPDATE credentials
		SET is_active = $3
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, userID, active)
	if err != nil {
		return fmt.Errorf("failed to update credential status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

// DeleteCredential removes a credential, scoped to its owner.
func (r *Repository) DeleteCredential(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM credentials
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

func (r *Repository) scanCredential(row pgx.Row) (*model.Credential, error) {
	var cred model.Credential
	err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Provider,
		&cred.KeyName,
		&cred.EncryptedKey,
		&cred.IsActive,
		&cred.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}
