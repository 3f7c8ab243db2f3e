package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/TwinScore/internal/energymix"
	"github.com/MikeSquared-Agency/TwinScore/internal/hermes"
	"github.com/MikeSquared-Agency/TwinScore/internal/metrics"
	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
	"github.com/MikeSquared-Agency/TwinScore/internal/store"
)

type EvaluateHandler struct {
	engine        *scoring.Engine
	store         store.Store
	hermes        hermes.Client
	mix           energymix.Provider
	zone          string
	lookupTimeout time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewEvaluateHandler(e *scoring.Engine, s store.Store, h hermes.Client, mix energymix.Provider, zone string, lookupTimeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *EvaluateHandler {
	if m == nil {
		m = metrics.New(nil)
	}
	return &EvaluateHandler{
		engine:        e,
		store:         s,
		hermes:        h,
		mix:           mix,
		zone:          zone,
		lookupTimeout: lookupTimeout,
		metrics:       m,
		logger:        logger,
	}
}

// EvaluateResponse is the result plus history bookkeeping.
type EvaluateResponse struct {
	ID *uuid.UUID `json:"id,omitempty"`
	scoring.EvaluationResult
	RenewableSource store.RenewableSource `json:"renewable_source"`
}

type validationErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Legacy handles POST /evaluate and answers with the bare result.
func (h *EvaluateHandler) Legacy(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := h.run(r.Context(), raw, r.Header.Get(ClientIDHeader))
	if err != nil {
		writeEvaluateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.EvaluationResult)
}

// Evaluate handles POST /api/v1/evaluate.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := h.run(r.Context(), raw, r.Header.Get(ClientIDHeader))
	if err != nil {
		writeEvaluateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// run resolves the renewable share, scores the request, records it in the
// history and publishes the outcome. History and event failures are logged
// but do not fail the evaluation.
func (h *EvaluateHandler) run(ctx context.Context, raw scoring.RawRequest, requester string) (*EvaluateResponse, error) {
	// Reject invalid input before spending a lookup on it.
	if _, err := scoring.Validate(raw, h.engine.Defaults()); err != nil {
		h.reject(ctx, raw, err)
		return nil, err
	}
	source := h.resolveRenewable(ctx, &raw)

	start := time.Now()
	exp, err := h.engine.Explain(raw)
	if err != nil {
		h.reject(ctx, raw, err)
		return nil, err
	}
	result := exp.Result
	h.metrics.ObserveEvaluation(string(result.Classification), result.FinalScore, time.Since(start))

	resp := &EvaluateResponse{EvaluationResult: result, RenewableSource: source}

	record := &store.Evaluation{
		Application:     exp.Request.Application,
		Request:         exp.Request,
		FinalScore:      result.FinalScore,
		Classification:  result.Classification,
		DetailedScores:  result.DetailedScores,
		RenewableSource: source,
		Requester:       requester,
	}
	if err := h.store.AppendEvaluation(ctx, record); err != nil {
		h.logger.Error("failed to record evaluation", "application", record.Application, "error", err)
		return resp, nil
	}
	id := record.ID
	resp.ID = &id

	h.publish(ctx, hermes.SubjectEvaluationCompleted(id.String()), hermes.EvaluationCompletedEvent{
		EvaluationID:    id.String(),
		Application:     record.Application,
		Components:      len(record.Request.Components),
		FinalScore:      result.FinalScore,
		Classification:  string(result.Classification),
		DetailedScores:  result.DetailedScores,
		RenewableSource: string(source),
		Timestamp:       record.CreatedAt,
	})

	h.logger.Info("evaluation completed",
		"evaluation_id", id,
		"application", record.Application,
		"final_score", result.FinalScore,
		"classification", result.Classification,
		"renewable_source", source,
	)
	return resp, nil
}

func (h *EvaluateHandler) reject(ctx context.Context, raw scoring.RawRequest, err error) {
	var vErr *scoring.ValidationError
	if !errors.As(err, &vErr) {
		return
	}
	h.metrics.ObserveValidationError(vErr.Reason)
	h.publish(ctx, hermes.SubjectEvaluationRejected, hermes.EvaluationRejectedEvent{
		Application: raw.Application,
		Field:       vErr.Field,
		Reason:      vErr.Reason,
		Timestamp:   time.Now().UTC(),
	})
}

// resolveRenewable fills an omitted renewable share from the live grid mix.
// On lookup failure, or a share outside [0, 100], the engine's configured
// default applies.
func (h *EvaluateHandler) resolveRenewable(ctx context.Context, raw *scoring.RawRequest) store.RenewableSource {
	if raw.RenewablePercentage.IsSet() {
		return store.RenewableFromRequest
	}
	if h.mix == nil {
		h.metrics.ObserveLookup(metrics.LookupSkipped)
		return store.RenewableFromDefault
	}

	lookupCtx := ctx
	if h.lookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, h.lookupTimeout)
		defer cancel()
	}

	mix, err := h.mix.Latest(lookupCtx, h.zone)
	if err == nil && !energymix.ValidPercentage(mix.RenewablePercentage) {
		err = fmt.Errorf("energymix: renewable percentage %v out of range", mix.RenewablePercentage)
	}
	if err != nil {
		h.logger.Warn("energy mix lookup failed, using default renewable share",
			"zone", h.zone,
			"default", h.engine.Defaults().RenewableFor(raw.Application),
			"error", err,
		)
		h.metrics.ObserveLookup(metrics.LookupFallback)
		return store.RenewableFromDefault
	}

	h.metrics.ObserveLookup(metrics.LookupLive)
	raw.RenewablePercentage = scoring.Q(mix.RenewablePercentage)
	return store.RenewableFromLive
}

func (h *EvaluateHandler) publish(ctx context.Context, subject string, event interface{}) {
	if h.hermes == nil {
		return
	}
	if err := h.hermes.Publish(ctx, subject, event); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// List handles GET /api/v1/evaluations.
func (h *EvaluateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.EvaluationFilter{Application: q.Get("application")}
	if c := q.Get("classification"); c != "" {
		class := scoring.Classification(c)
		filter.Classification = &class
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		filter.Offset = n
	}

	evals, err := h.store.ListEvaluations(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if evals == nil {
		evals = []*store.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

// Get handles GET /api/v1/evaluations/{id}.
func (h *EvaluateHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, eval)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (scoring.RawRequest, bool) {
	var raw scoring.RawRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return raw, false
	}
	return raw, true
}

func writeEvaluateError(w http.ResponseWriter, err error) {
	var vErr *scoring.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  "validation failed",
			Field:  vErr.Field,
			Reason: vErr.Reason,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
