package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatforge/chatforge/internal/handler/dto"
	"github.com/chatforge/chatforge/internal/provider"
)

// CatalogHandler serves the read-only provider and model catalog.
type CatalogHandler struct {
	registry *provider.Registry
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(registry *provider.Registry) *CatalogHandler {
	return &CatalogHandler{registry: registry}
}

// ListProviders handles GET /api/v1/providers.
func (h *CatalogHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	adapters := h.registry.List()

	items := make([]dto.ProviderResponse, 0, len(adapters))
	for _, a := range adapters {
		items = append(items, dto.ProviderResponse{
			ID:     a.ID(),
			Name:   a.Name(),
			Models: a.Models(),
		})
	}

	writeJSON(w, http.StatusOK, dto.ProviderListResponse{Providers: items})
}

// ListModels handles GET /api/v1/providers/{provider}/models.
func (h *CatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "provider")

	adapter, err := h.registry.Get(providerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_PROVIDER", "Unknown provider")
		return
	}

	writeJSON(w, http.StatusOK, dto.ModelListResponse{
		Provider: adapter.ID(),
		Models:   adapter.Models(),
	})
}
