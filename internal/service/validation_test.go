package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chatforge/chatforge/internal/provider"
)

func TestRegisterValidationErrors(t *testing.T) {
	svc := &AccountService{}

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "username too short",
			input:   RegisterInput{Username: "ab", Email: "a@b.com", Password: "password123"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "username bad chars",
			input:   RegisterInput{Username: "user name", Email: "a@b.com", Password: "password123"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "username too long",
			input:   RegisterInput{Username: strings.Repeat("a", 51), Email: "a@b.com", Password: "password123"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "bad email",
			input:   RegisterInput{Username: "alice", Email: "not-an-email", Password: "password123"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "short password",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"},
			wantErr: ErrWeakPassword,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCreateConversationValidationErrors(t *testing.T) {
	svc := NewConversationService(nil, provider.NewRegistry(), nil)

	tests := []struct {
		name    string
		input   CreateConversationInput
		wantErr error
	}{
		{
			name:    "empty title",
			input:   CreateConversationInput{Provider: "openai", Model: "gpt-4"},
			wantErr: ErrInvalidTitle,
		},
		{
			name:    "title too long",
			input:   CreateConversationInput{Title: strings.Repeat("t", 256), Provider: "openai", Model: "gpt-4"},
			wantErr: ErrInvalidTitle,
		},
		{
			name:    "unknown provider",
			input:   CreateConversationInput{Title: "chat", Provider: "openai", Model: "gpt-4"},
			wantErr: ErrUnknownProvider,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateConversation(context.Background(), "user-1", test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestAddCredentialValidationErrors(t *testing.T) {
	// An empty registry rejects every provider id.
	svc := NewCredentialService(nil, nil, provider.NewRegistry())

	_, err := svc.AddCredential(context.Background(), "user-1", AddCredentialInput{
		Provider: "openai",
		KeyName:  "My Key",
		APIKey:   "sk-test",
	})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}
