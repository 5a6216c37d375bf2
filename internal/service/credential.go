package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatforge/chatforge/internal/model"
	"github.com/chatforge/chatforge/internal/provider"
	"github.com/chatforge/chatforge/internal/repository"
	"github.com/chatforge/chatforge/internal/secrets"
)

// Credential service errors.
var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrInvalidKeyName     = errors.New("key_name must be 1-100 characters")
	ErrEmptyAPIKey        = errors.New("api_key is required")
)

const maxKeyNameLength = 100

// CredentialService handles provider credential management.
// Secrets are encrypted before they reach the repository and are never
// returned by any read path.
type CredentialService struct {
	repo      *repository.Repository
	encryptor *secrets.Encryptor
	providers *provider.Registry
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(repo *repository.Repository, encryptor *secrets.Encryptor, providers *provider.Registry) *CredentialService {
	return &CredentialService{
		repo:      repo,
		encryptor: encryptor,
		providers: providers,
	}
}

// AddCredentialInput defines input for storing a credential.
type AddCredentialInput struct {
	Provider string
	KeyName  string
	APIKey   string
}

// AddCredential encrypts and stores a new provider credential.
func (s *CredentialService) AddCredential(ctx context.Context, userID string, input AddCredentialInput) (*model.Credential, error) {
	if _, err := s.providers.Get(input.Provider); err != nil {
		return nil, ErrUnknownProvider
	}
	if input.KeyName == "" || len(input.KeyName) > maxKeyNameLength {
		return nil, ErrInvalidKeyName
	}
	if input.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	encrypted, err := s.encryptor.Encrypt(input.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	cred := &model.Credential{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Provider:     input.Provider,
		KeyName:      input.KeyName,
		EncryptedKey: encrypted,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	return cred, nil
}

// ListCredentials returns a user's credentials, secrets omitted by the model.
func (s *CredentialService) ListCredentials(ctx context.Context, userID string) ([]*model.Credential, error) {
	return s.repo.ListCredentials(ctx, userID)
}

// UpdateCredentialInput defines the mutable credential fields. Nil pointers
// leave the current value untouched.
type UpdateCredentialInput struct {
	KeyName  *string
	APIKey   *string
	IsActive *bool
}

// UpdateCredential renames, rotates, or toggles a credential.
func (s *CredentialService) UpdateCredential(ctx context.Context, userID, id string, input UpdateCredentialInput) (*model.Credential, error) {
	cred, err := s.repo.GetCredential(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}

	if input.KeyName != nil {
		if *input.KeyName == "" || len(*input.KeyName) > maxKeyNameLength {
			return nil, ErrInvalidKeyName
		}
		cred.KeyName = *input.KeyName
	}

	if input.APIKey != nil {
		if *input.APIKey == "" {
			return nil, ErrEmptyAPIKey
		}
		encrypted, err := s.encryptor.Encrypt(*input.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt credential: %w", err)
		}
		cred.EncryptedKey = encrypted
	}

	if input.IsActive != nil {
		cred.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateCredential(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}

	return cred, nil
}

// DeleteCredential removes a credential.
func (s *CredentialService) DeleteCredential(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteCredential(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return ErrCredentialNotFound
		}
		return err
	}
	return nil
}
