package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chatforge/chatforge/internal/metrics"
	"github.com/chatforge/chatforge/internal/model"
	"github.com/chatforge/chatforge/internal/provider"
	"github.com/chatforge/chatforge/internal/repository"
	"github.com/chatforge/chatforge/internal/usage"
)

// Chat service errors.
var (
	ErrEmptyContent      = errors.New("message content is required")
	ErrMissingCredential = errors.New("no active credential for provider")
)

// generationErrorPrefix is prepended to the assistant diagnostic turn that
// records a failed generation.
const generationErrorPrefix = "Error generating response: "

// ConversationStore is the persistence surface SendMessage needs.
// *repository.Repository satisfies it.
type ConversationStore interface {
	GetConversation(ctx context.Context, userID, id string) (*model.Conversation, error)
	InsertMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
	TouchConversation(ctx context.Context, id string, updatedAt time.Time) error
}

// CredentialStore resolves the caller's provider credential.
// *repository.Repository satisfies it.
type CredentialStore interface {
	GetActiveCredential(ctx context.Context, userID, provider string) (*model.Credential, error)
}

// Decrypter recovers the plaintext secret from stored ciphertext.
// *secrets.Encryptor satisfies it.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Generator produces an assistant reply from conversation history.
// *provider.Registry satisfies it.
type Generator interface {
	Generate(ctx context.Context, providerID string, history []provider.Message, model, credential string) (string, error)
}

// UsagePublisher captures usage events without blocking the request.
// *usage.Publisher satisfies it.
type UsagePublisher interface {
	PublishAsync(event usage.EventPayload)
}

// ChatService orchestrates the send-message flow.
type ChatService struct {
	convs     ConversationStore
	creds     CredentialStore
	decrypter Decrypter
	generator Generator
	usage     UsagePublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewChatService creates a new ChatService. usagePublisher may be nil when
// the usage pipeline is disabled.
func NewChatService(
	convs ConversationStore,
	creds CredentialStore,
	decrypter Decrypter,
	generator Generator,
	usagePublisher UsagePublisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{
		convs:     convs,
		creds:     creds,
		decrypter: decrypter,
		generator: generator,
		usage:     usagePublisher,
		metrics:   recorder,
		logger:    logger.With("component", "service.chat"),
	}
}

// SendMessageInput defines input for appending a user turn.
// Provider and Model override the conversation defaults when set.
type SendMessageInput struct {
	Content  string
	Provider string
	Model    string
}

// SendMessageResult is the synchronous outcome of a send-message call.
// AssistantMessage is either the generated reply or a persisted diagnostic
// turn describing the failure.
type SendMessageResult struct {
	UserMessage      *model.Message
	AssistantMessage *model.Message
}

// SendMessage appends the user turn, resolves the caller's credential, asks
// the provider for a reply, and appends the assistant turn.
//
// The user message is persisted as soon as ownership is verified and is
// never rolled back. A missing credential is a client error; any later
// failure is recorded as an assistant diagnostic turn and the call still
// succeeds.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID string, input SendMessageInput) (*SendMessageResult, error) {
	if input.Content == "" {
		return nil, ErrEmptyContent
	}

	conv, err := s.convs.GetConversation(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	providerID := input.Provider
	if providerID == "" {
		providerID = conv.Provider
	}
	modelID := input.Model
	if modelID == "" {
		modelID = conv.Model
	}

	userMsg := &model.Message{
		ID:             ulid.Make().String(),
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        input.Content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.convs.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	cred, err := s.creds.GetActiveCredential(ctx, userID, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			// The user turn stays; the conversation was still written to.
			s.touch(ctx, conv.ID)
			return nil, ErrMissingCredential
		}
		return nil, err
	}

	genStart := time.Now()
	assistantMsg, genErr := s.generate(ctx, conv, cred, providerID, modelID)
	genDuration := time.Since(genStart)
	if err := s.convs.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	s.touch(ctx, conv.ID)

	s.metrics.IncMessageSent(providerID)
	outcome := model.UsageOutcomeSuccess
	if genErr != nil {
		outcome = model.UsageOutcomeFailure
		s.metrics.IncGenerationFailure(providerID)
		s.logger.Warn("generation failed",
			"conversation_id", conv.ID,
			"provider", providerID,
			"model", modelID,
			"error", genErr,
		)
	}
	if s.usage != nil {
		s.usage.PublishAsync(usage.EventPayload{
			UserID:         userID,
			ConversationID: conv.ID,
			Provider:       providerID,
			Model:          modelID,
			Outcome:        outcome,
			DurationMs:     genDuration.Milliseconds(),
			OccurredAt:     time.Now().UTC().UnixMilli(),
		})
	}

	return &SendMessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// generate runs one provider round-trip and shapes the assistant turn.
// The returned error reports whether generation failed; the message is
// always usable.
func (s *ChatService) generate(ctx context.Context, conv *model.Conversation, cred *model.Credential, providerID, modelID string) (*model.Message, error) {
	assistantMsg := &model.Message{
		ID:             ulid.Make().String(),
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
	}

	content, genErr := s.generateContent(ctx, conv, cred, providerID, modelID)
	if genErr != nil {
		assistantMsg.Content = generationErrorPrefix + genErr.Error()
		assistantMsg.Metadata = map[string]string{"error": "true"}
	} else {
		assistantMsg.Content = content
	}
	assistantMsg.CreatedAt = time.Now().UTC()

	return assistantMsg, genErr
}

func (s *ChatService) generateContent(ctx context.Context, conv *model.Conversation, cred *model.Credential, providerID, modelID string) (string, error) {
	apiKey, err := s.decrypter.Decrypt(cred.EncryptedKey)
	if err != nil {
		return "", fmt.Errorf("credential unusable: %w", err)
	}

	msgs, err := s.convs.ListMessages(ctx, conv.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]provider.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, provider.Message{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	content, err := s.generator.Generate(ctx, providerID, history, modelID, apiKey)
	s.metrics.ObserveGenerationDuration(providerID, time.Since(start))
	if err != nil {
		return "", err
	}

	return content, nil
}

// touch bumps the conversation's updated_at. Failures are logged, not
// surfaced; the messages are already durable.
func (s *ChatService) touch(ctx context.Context, conversationID string) {
	if err := s.convs.TouchConversation(ctx, conversationID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to bump conversation", "conversation_id", conversationID, "error", err)
	}
}
