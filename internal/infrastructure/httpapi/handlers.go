package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/usecase/memory"
	"ideation-orchestrator/internal/usecase/scoring"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	jobs   *jobs
	memory *memory.Service
	logger output.LoggerPort
}

type evaluationRequest struct {
	Topic string `json:"topic"`
}

func (h *handlers) createEvaluation(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if !decode(w, r, &req) {
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	jb := h.jobs.start(topic)
	w.Header().Set("Location", "/api/evaluations/"+jb.ID)
	writeJSON(w, http.StatusAccepted, jb)
}

func (h *handlers) getEvaluation(w http.ResponseWriter, r *http.Request) {
	jb, ok := h.jobs.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	writeJSON(w, http.StatusOK, jb)
}

// phaseReport is what a remotely hosted agent posts when it finishes.
// Scoring agents also send score, decision and which validation phase the
// score belongs to. Criteria without a score are weighted with the phase
// rubric.
type phaseReport struct {
	Agent    string             `json:"agent"`
	Phase    string             `json:"phase"`
	Data     map[string]string  `json:"data"`
	Score    *float64           `json:"score,omitempty"`
	Criteria map[string]float64 `json:"criteria,omitempty"`
	Decision string             `json:"decision,omitempty"`
}

func (h *handlers) reportPhase(w http.ResponseWriter, r *http.Request) {
	if h.memory == nil {
		writeError(w, http.StatusServiceUnavailable, "memory is not configured")
		return
	}
	var req phaseReport
	if !decode(w, r, &req) {
		return
	}
	if req.Agent == "" || req.Phase == "" {
		writeError(w, http.StatusBadRequest, "agent and phase are required")
		return
	}
	sessionID := chi.URLParam(r, "id")

	score := req.Score
	var details map[string]any
	if len(req.Criteria) > 0 {
		total, breakdown := scoring.ScoreCriteria(req.Criteria, scoring.RubricWeights(scoring.RubricFor(req.Phase)))
		if len(breakdown) > 0 {
			details = map[string]any{"breakdown": scoring.FormatBreakdown(breakdown)}
			if score == nil {
				score = &total
			}
		}
	}
	if score != nil {
		validated := scoring.ValidateScore(*score)
		decision := req.Decision
		if decision == "" {
			decision = "scored"
		}
		if err := h.memory.WriteScore(r.Context(), sessionID, req.Phase, validated, decision, details); err != nil {
			h.fail(w, err)
			return
		}
	}
	if err := h.memory.WritePhaseOutput(r.Context(), sessionID, req.Agent, req.Phase, req.Data); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sessionID, "agent": req.Agent, "status": "recorded"})
}

type pendingRequest struct {
	Topic string `json:"topic"`
	Notes string `json:"notes"`
}

func (h *handlers) addPendingIdea(w http.ResponseWriter, r *http.Request) {
	if h.memory == nil {
		writeError(w, http.StatusServiceUnavailable, "memory is not configured")
		return
	}
	var req pendingRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.memory.SavePendingIdea(r.Context(), req.Topic, req.Notes)
	if err != nil {
		if strings.TrimSpace(req.Topic) == "" {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.logger.Error("Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
