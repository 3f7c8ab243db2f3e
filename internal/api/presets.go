package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/TwinScore/internal/presets"
)

type PresetsHandler struct {
	evaluate *EvaluateHandler
}

func NewPresetsHandler(evaluate *EvaluateHandler) *PresetsHandler {
	return &PresetsHandler{evaluate: evaluate}
}

func (h *PresetsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presets.List())
}

func (h *PresetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := presets.Get(chi.URLParam(r, "application"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preset not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Evaluate scores the preset twin through the regular evaluation path, so
// the result is recorded and published like any other request.
func (h *PresetsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	p, ok := presets.Get(chi.URLParam(r, "application"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "preset not found"})
		return
	}
	resp, err := h.evaluate.run(r.Context(), p.Request(), r.Header.Get(ClientIDHeader))
	if err != nil {
		writeEvaluateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
