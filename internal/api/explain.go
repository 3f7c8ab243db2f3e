package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
	"github.com/MikeSquared-Agency/TwinScore/internal/store"
)

type ExplainHandler struct {
	engine *scoring.Engine
	store  store.Store
}

func NewExplainHandler(e *scoring.Engine, s store.Store) *ExplainHandler {
	return &ExplainHandler{engine: e, store: s}
}

type explainResponse struct {
	EvaluationID *uuid.UUID `json:"evaluation_id,omitempty"`
	// Recorded is the result stored at evaluation time; Result reflects the
	// current calibration.
	Recorded   *scoring.EvaluationResult `json:"recorded_result,omitempty"`
	Result     scoring.EvaluationResult  `json:"result"`
	Request    scoring.EvaluationRequest `json:"request"`
	SubScores  []scoring.SubScore        `json:"sub_scores"`
	WeightSum  float64                   `json:"weight_sum"`
	Normalized bool                      `json:"normalized"`
}

func newExplainResponse(exp scoring.Explanation) explainResponse {
	return explainResponse{
		Result:     exp.Result,
		Request:    exp.Request,
		SubScores:  exp.SubScores,
		WeightSum:  exp.WeightSum,
		Normalized: exp.Normalized,
	}
}

// Explain scores a request and returns the breakdown without recording it.
// POST /api/v1/evaluations/explain
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	exp, err := h.engine.Explain(raw)
	if err != nil {
		writeEvaluateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newExplainResponse(exp))
}

// ExplainStored re-scores a recorded evaluation with the current calibration.
// GET /api/v1/evaluations/{id}/explain
func (h *ExplainHandler) ExplainStored(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid evaluation id"})
		return
	}

	eval, err := h.store.GetEvaluation(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if eval == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "evaluation not found"})
		return
	}

	req := eval.Request
	resp := newExplainResponse(h.engine.Score(&req))
	resp.EvaluationID = &eval.ID
	recorded := eval.Result()
	resp.Recorded = &recorded
	writeJSON(w, http.StatusOK, resp)
}
