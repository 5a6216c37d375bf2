package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatforge/chatforge/internal/handler/dto"
	"github.com/chatforge/chatforge/internal/service"
)

// ConversationHandler handles HTTP requests for conversations and messages.
type ConversationHandler struct {
	convs  *service.ConversationService
	chat   *service.ChatService
	logger *slog.Logger
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(convs *service.ConversationService, chat *service.ChatService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		convs:  convs,
		chat:   chat,
		logger: logger,
	}
}

// Create handles POST /api/v1/conversations.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	conv, err := h.convs.CreateConversation(r.Context(), userID, service.CreateConversationInput{
		Title:    req.Title,
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("conversation_created",
		"conversation_id", conv.ID,
		"user_id", userID,
		"provider", conv.Provider,
		"model", conv.Model,
	)

	writeJSON(w, http.StatusCreated, dto.ToConversationResponse(conv))
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	convs, err := h.convs.ListConversations(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToConversationListResponse(convs))
}

// Get handles GET /api/v1/conversations/{id}.
// The response includes the full message history in turn order.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Conversation ID is required")
		return
	}

	detail, err := h.convs.GetConversation(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToConversationDetailResponse(detail.Conversation, detail.Messages))
}

// Rename handles PATCH /api/v1/conversations/{id}.
func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Conversation ID is required")
		return
	}

	var req dto.RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	conv, err := h.convs.RenameConversation(r.Context(), userID, id, req.Title)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("conversation_renamed", "conversation_id", conv.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.ToConversationResponse(conv))
}

// Delete handles DELETE /api/v1/conversations/{id}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Conversation ID is required")
		return
	}

	if err := h.convs.DeleteConversation(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("conversation_deleted", "conversation_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /api/v1/conversations/{id}/messages.
// On success the response carries both the persisted user turn and the
// assistant turn, which may be a diagnostic turn if generation failed.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Conversation ID is required")
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.chat.SendMessage(r.Context(), userID, id, service.SendMessageInput{
		Content:  req.Content,
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("message_sent",
		"conversation_id", id,
		"user_id", userID,
		"user_message_id", result.UserMessage.ID,
		"assistant_message_id", result.AssistantMessage.ID,
	)

	writeJSON(w, http.StatusCreated, dto.SendMessageResponse{
		UserMessage:      dto.ToMessageResponse(result.UserMessage),
		AssistantMessage: dto.ToMessageResponse(result.AssistantMessage),
	})
}

// handleServiceError maps conversation and chat service errors to HTTP responses.
func (h *ConversationHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
	case errors.Is(err, service.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, "UNKNOWN_PROVIDER", "Unknown provider")
	case errors.Is(err, service.ErrEmptyModel):
		writeError(w, http.StatusBadRequest, "EMPTY_MODEL", "Model is required")
	case errors.Is(err, service.ErrInvalidTitle):
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", "Invalid conversation title")
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "EMPTY_CONTENT", "Message content is required")
	case errors.Is(err, service.ErrMissingCredential):
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIAL", "No active API key for this provider")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
