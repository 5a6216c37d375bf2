package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatforge/chatforge/internal/metrics"
	"github.com/chatforge/chatforge/internal/model"
	"github.com/chatforge/chatforge/internal/provider"
	"github.com/chatforge/chatforge/internal/repository"
)

// Conversation service errors.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidTitle         = errors.New("title must be 1-255 characters")
	ErrEmptyModel           = errors.New("model is required")
)

const maxTitleLength = 255

// ConversationService handles conversation management.
type ConversationService struct {
	repo      *repository.Repository
	providers *provider.Registry
	metrics   metrics.Recorder
}

// NewConversationService creates a new ConversationService.
func NewConversationService(repo *repository.Repository, providers *provider.Registry, recorder metrics.Recorder) *ConversationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ConversationService{
		repo:      repo,
		providers: providers,
		metrics:   recorder,
	}
}

// CreateConversationInput defines input for starting a conversation.
type CreateConversationInput struct {
	Title    string
	Provider string
	Model    string
}

// CreateConversation starts a new conversation with default provider/model.
// The model string is not validated against the provider catalog; providers
// accept model names the static catalog does not list.
func (s *ConversationService) CreateConversation(ctx context.Context, userID string, input CreateConversationInput) (*model.Conversation, error) {
	if input.Title == "" || len(input.Title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}
	if _, err := s.providers.Get(input.Provider); err != nil {
		return nil, ErrUnknownProvider
	}
	if input.Model == "" {
		return nil, ErrEmptyModel
	}

	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Title:     input.Title,
		Provider:  input.Provider,
		Model:     input.Model,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.metrics.IncConversationCreated()

	return conv, nil
}

// ListConversations returns a user's conversations, most recently active first.
func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

// ConversationDetail bundles a conversation with its full ordered history.
type ConversationDetail struct {
	Conversation *model.Conversation
	Messages     []*model.Message
}

// GetConversation retrieves a conversation and its messages.
func (s *ConversationService) GetConversation(ctx context.Context, userID, id string) (*ConversationDetail, error) {
	conv, err := s.repo.GetConversation(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &ConversationDetail{Conversation: conv, Messages: msgs}, nil
}

// RenameConversation updates a conversation title.
func (s *ConversationService) RenameConversation(ctx context.Context, userID, id, title string) (*model.Conversation, error) {
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateConversationTitle(ctx, userID, id, title, now); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	return s.repo.GetConversation(ctx, userID, id)
}

// DeleteConversation removes a conversation and its messages.
func (s *ConversationService) DeleteConversation(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteConversation(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return err
	}

	s.metrics.IncConversationDeleted()

	return nil
}
