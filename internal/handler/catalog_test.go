package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/chatforge/chatforge/internal/handler/dto"
	"github.com/chatforge/chatforge/internal/provider"
)

// stubAdapter is a minimal provider for catalog tests.
type stubAdapter struct {
	id     string
	name   string
	models []provider.ModelInfo
}

func (s *stubAdapter) ID() string { return s.id }

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Models() []provider.ModelInfo { return s.models }

func (s *stubAdapter) Generate(ctx context.Context, history []provider.Message, model, credential string) (string, error) {
	return "", nil
}

func newCatalogTestHandler() *CatalogHandler {
	registry := provider.NewRegistry(
		&stubAdapter{
			id:   "openai",
			name: "OpenAI",
			models: []provider.ModelInfo{
				{ID: "gpt-4", Name: "GPT-4"},
				{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
			},
		},
		&stubAdapter{
			id:     "ollama",
			name:   "Ollama",
			models: []provider.ModelInfo{{ID: "llama3", Name: "Llama 3"}},
		},
	)
	return NewCatalogHandler(registry)
}

func TestCatalogHandler_ListProviders(t *testing.T) {
	h := newCatalogTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	rec := httptest.NewRecorder()

	h.ListProviders(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.ProviderListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(response.Providers))
	}

	byID := make(map[string]dto.ProviderResponse)
	for _, p := range response.Providers {
		byID[p.ID] = p
	}

	openai, ok := byID["openai"]
	if !ok {
		t.Fatal("expected openai in provider list")
	}
	if openai.Name != "OpenAI" {
		t.Errorf("expected name OpenAI, got %s", openai.Name)
	}
	if len(openai.Models) != 2 {
		t.Errorf("expected 2 openai models, got %d", len(openai.Models))
	}
}

func TestCatalogHandler_ListModels(t *testing.T) {
	h := newCatalogTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/ollama/models", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", "ollama")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.ListModels(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response dto.ModelListResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", response.Provider)
	}
	if len(response.Models) != 1 || response.Models[0].ID != "llama3" {
		t.Errorf("unexpected models: %+v", response.Models)
	}
}

func TestCatalogHandler_ListModels_UnknownProvider(t *testing.T) {
	h := newCatalogTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/gemini/models", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", "gemini")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.ListModels(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != "UNKNOWN_PROVIDER" {
		t.Errorf("expected code UNKNOWN_PROVIDER, got %s", response.Code)
	}
}
