// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/chatforge/chatforge/internal/model"
	"github.com/chatforge/chatforge/internal/provider"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse represents a successful register or login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AddCredentialRequest represents the request body for storing an API key.
type AddCredentialRequest struct {
	Provider string `json:"provider"`
	KeyName  string `json:"key_name"`
	APIKey   string `json:"api_key"`
}

// UpdateCredentialRequest represents the request body for updating a stored key.
type UpdateCredentialRequest struct {
	KeyName  *string `json:"key_name,omitempty"`
	APIKey   *string `json:"api_key,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CredentialResponse represents a stored key in API responses.
// The key material itself is never returned.
type CredentialResponse struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	KeyName   string    `json:"key_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateConversationRequest represents the request body for creating a conversation.
type CreateConversationRequest struct {
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// RenameConversationRequest represents the request body for renaming a conversation.
type RenameConversationRequest struct {
	Title string `json:"title"`
}

// ConversationResponse represents a conversation in API responses.
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationDetailResponse is a conversation with its full message history.
type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

// ConversationListResponse wraps a list of conversations.
type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	Content  string `json:"content"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// MessageResponse represents a message turn in API responses.
type MessageResponse struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Role           string            `json:"role"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// SendMessageResponse carries both turns persisted by a send-message call.
type SendMessageResponse struct {
	UserMessage      MessageResponse `json:"user_message"`
	AssistantMessage MessageResponse `json:"assistant_message"`
}

// ProviderResponse describes one provider in the catalog.
type ProviderResponse struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Models []provider.ModelInfo `json:"models"`
}

// ProviderListResponse wraps the provider catalog.
type ProviderListResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// ModelListResponse wraps one provider's model list.
type ModelListResponse struct {
	Provider string               `json:"provider"`
	Models   []provider.ModelInfo `json:"models"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a model.User to a UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ToCredentialResponse converts a model.Credential to a CredentialResponse.
func ToCredentialResponse(c *model.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        c.ID,
		Provider:  c.Provider,
		KeyName:   c.KeyName,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// ToConversationResponse converts a model.Conversation to a ConversationResponse.
func ToConversationResponse(c *model.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        c.ID,
		Title:     c.Title,
		Provider:  c.Provider,
		Model:     c.Model,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToConversationListResponse converts conversations to a list response.
func ToConversationListResponse(convs []*model.Conversation) ConversationListResponse {
	items := make([]ConversationResponse, 0, len(convs))
	for _, c := range convs {
		items = append(items, ToConversationResponse(c))
	}
	return ConversationListResponse{Conversations: items}
}

// ToMessageResponse converts a model.Message to a MessageResponse.
func ToMessageResponse(m *model.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		Metadata:       m.Metadata,
		CreatedAt:      m.CreatedAt,
	}
}

// ToConversationDetailResponse converts a conversation and its history.
func ToConversationDetailResponse(c *model.Conversation, msgs []*model.Message) ConversationDetailResponse {
	items := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, ToMessageResponse(m))
	}
	return ConversationDetailResponse{
		ConversationResponse: ToConversationResponse(c),
		Messages:             items,
	}
}
