package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/aibradaa-labs/council/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DecisionHandler struct {
	orch     *service.Orchestrator
	verdicts domain.VerdictStore
}

func NewDecisionHandler(orch *service.Orchestrator, verdicts domain.VerdictStore) *DecisionHandler {
	return &DecisionHandler{orch: orch, verdicts: verdicts}
}

type submitDecisionRequest struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
	RequestedBy string         `json:"requested_by"`
	Urgency     string         `json:"urgency,omitempty"`
}

// Submit runs a proposal through the council and returns the verdict.
func (h *DecisionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict, err := h.orch.Submit(r.Context(), service.SubmitInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Context:     req.Context,
		RequestedBy: req.RequestedBy,
		Urgency:     req.Urgency,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownDecisionType),
			errors.Is(err, service.ErrDecisionTitleEmpty),
			errors.Is(err, service.ErrDecisionNoRequester),
			errors.Is(err, service.ErrInvalidUrgency):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve decision")
		}
		return
	}

	writeJSON(w, http.StatusCreated, verdict)
}

// GetByDecisionID returns the audited verdict for a concluded decision.
func (h *DecisionHandler) GetByDecisionID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid decision id")
		return
	}

	verdict, err := h.verdicts.GetByDecisionID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVerdictNotFound) {
			writeError(w, http.StatusNotFound, "verdict not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load verdict")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// ListRecent returns the most recently concluded verdicts.
func (h *DecisionHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	verdicts, err := h.verdicts.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list verdicts")
		return
	}
	if verdicts == nil {
		verdicts = []domain.Verdict{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"verdicts": verdicts})
}
