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

// CredentialHandler handles HTTP requests for stored provider API keys.
// Responses carry key metadata only; ciphertext and plaintext never leave
// the service layer.
type CredentialHandler struct {
	svc    *service.CredentialService
	logger *slog.Logger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(svc *service.CredentialService, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/keys.
func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req dto.AddCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	cred, err := h.svc.AddCredential(r.Context(), userID, service.AddCredentialInput{
		Provider: req.Provider,
		KeyName:  req.KeyName,
		APIKey:   req.APIKey,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("credential_created",
		"credential_id", cred.ID,
		"user_id", userID,
		"provider", cred.Provider,
	)

	writeJSON(w, http.StatusCreated, dto.ToCredentialResponse(cred))
}

// List handles GET /api/v1/keys.
func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	creds, err := h.svc.ListCredentials(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	items := make([]dto.CredentialResponse, 0, len(creds))
	for _, c := range creds {
		items = append(items, dto.ToCredentialResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string][]dto.CredentialResponse{"keys": items})
}

// Update handles PUT /api/v1/keys/{id}.
func (h *CredentialHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Key ID is required")
		return
	}

	var req dto.UpdateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	cred, err := h.svc.UpdateCredential(r.Context(), userID, id, service.UpdateCredentialInput{
		KeyName:  req.KeyName,
		APIKey:   req.APIKey,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("credential_updated",
		"credential_id", cred.ID,
		"user_id", userID,
		"rotated", req.APIKey != nil,
	)

	writeJSON(w, http.StatusOK, dto.ToCredentialResponse(cred))
}

// Delete handles DELETE /api/v1/keys/{id}.
func (h *CredentialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Key ID is required")
		return
	}

	if err := h.svc.DeleteCredential(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("credential_deleted", "credential_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps credential service errors to HTTP responses.
func (h *CredentialHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, "KEY_NOT_FOUND", "API key not found")
	case errors.Is(err, service.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, "UNKNOWN_PROVIDER", "Unknown provider")
	case errors.Is(err, service.ErrInvalidKeyName):
		writeError(w, http.StatusBadRequest, "INVALID_KEY_NAME", "Invalid key name")
	case errors.Is(err, service.ErrEmptyAPIKey):
		writeError(w, http.StatusBadRequest, "EMPTY_API_KEY", "API key is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
