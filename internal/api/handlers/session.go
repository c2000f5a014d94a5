package handlers

import (
	"net/http"
	"strconv"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessions domain.SessionStore
}

func NewSessionHandler(sessions domain.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetRecent returns the tail of a user's session window.
func (h *SessionHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	limit := domain.SessionWindowSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.SessionWindowSize {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	msgs, err := h.sessions.GetRecent(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Clear deletes a user's session window.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.sessions.Clear(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
