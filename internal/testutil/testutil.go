package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/chatforge/chatforge/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetCoreTables empties all application tables. Migrations have already
// run by the time a test connects, so truncation is enough.
func ResetCoreTables(ctx context.Context, pool *pgxpool.Pool) error {
	query := `TRUNCATE usage_events, messages, conversations, credentials, users`
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueID generates an ID with a readable prefix for test entities.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, ulid.Make().String())
}

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC()
	id := ulid.Make().String()
	return &model.User{
		ID:           id,
		Username:     "user-" + id,
		Email:        "user-" + id + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestCredential creates a test credential owned by the given user.
func NewTestCredential(t testing.TB, userID, provider string) *model.Credential {
	t.Helper()
	return &model.Credential{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Provider:     provider,
		KeyName:      "Test Key",
		EncryptedKey: "ZW5jcnlwdGVkLWtleS1ibG9i",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestConversation creates a test conversation owned by the given user.
func NewTestConversation(t testing.TB, userID string) *model.Conversation {
	t.Helper()
	now := time.Now().UTC()
	return &model.Conversation{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     "Test Conversation",
		Provider:  "openai",
		Model:     "gpt-4",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestMessage creates a test message in the given conversation.
func NewTestMessage(t testing.TB, conversationID, role, content string) *model.Message {
	t.Helper()
	return &model.Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}
