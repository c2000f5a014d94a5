package handlers

import (
	"errors"
	"net/http"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/aibradaa-labs/council/internal/service"
	"github.com/go-chi/chi/v5"
)

type PersonaHandler struct {
	registry *service.Registry
}

func NewPersonaHandler(registry *service.Registry) *PersonaHandler {
	return &PersonaHandler{registry: registry}
}

// List returns the full persona catalogue.
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"personas": h.registry.All(),
		"count":    h.registry.Count(),
	})
}

// GetByID returns one persona.
func (h *PersonaHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrPersonaNotFound) {
			writeError(w, http.StatusNotFound, "persona not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load persona")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
